package entity

type Player struct {
	ID     string `json:"id"`
	Symbol string `json:"symbol,omitempty"`
}
