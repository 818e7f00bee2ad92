package model

// Broker is a retail market participant settled by the balancing market.
type Broker struct {
	ID       string `json:"id" yaml:"id"`
	Username string `json:"username" yaml:"username"`
}

// Name returns the username when set, the identifier otherwise.
func (b Broker) Name() string {
	if b.Username != "" {
		return b.Username
	}
	return b.ID
}
