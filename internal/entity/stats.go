package entity

// PlayerStats are lifetime counters for one player across online games.
type PlayerStats struct {
	Wins   int `json:"wins"`
	Losses int `json:"losses"`
	Draws  int `json:"draws"`
}
