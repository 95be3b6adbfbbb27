package kinds

// DefaultRegistry returns the built-in catalog, plus a cloud-control
// backed kind for every extra type name.
func DefaultRegistry(cloudControlTypes ...string) *Registry {
	r := NewRegistry(
		AutoScalingGroups(),
		CloudTrailTrails(),
		DynamoDBTables(),
		EC2Instances(),
		EC2Volumes(),
		ECRRepositories(),
		ECSClusters(),
		EKSClusters(),
		IAMRoles(),
		KMSKeys(),
		LambdaFunctions(),
		LoadBalancers(),
		LogGroups(),
		MemoryDBClusters(),
		RDSInstances(),
		RedshiftClusters(),
		Route53HostedZones(),
		S3Buckets(),
		SQSQueues(),
	)
	for _, typeName := range cloudControlTypes {
		r.Register(CloudControl(typeName))
	}
	return r
}
