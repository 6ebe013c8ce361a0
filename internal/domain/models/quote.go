package models

// Quote is a streamed market tick for a tracked symbol.
type Quote struct {
	Symbol    string
	Timestamp int64 // unix seconds
	Price     float64
	Volume    float64
}
