package types

// AccountInfo identifies a validated AWS account.
type AccountInfo struct {
	ID    string `json:"id"`
	ARN   string `json:"arn"`
	Alias string `json:"alias,omitempty"`
}
