package domain

type ClientMessage struct {
	Type       string `json:"type"`
	Row        int    `json:"row"`
	Col        int    `json:"col"`
	HumanFirst *bool  `json:"humanFirst,omitempty"` // nil means the human moves first
}

type ServerMessage struct {
	Type       string  `json:"type"`
	Message    string  `json:"message,omitempty"`
	GameID     string  `json:"gameId,omitempty"`
	HumanPiece int     `json:"humanPiece,omitempty"`
	NextTurn   int     `json:"nextTurn,omitempty"`
	Move       *Coord  `json:"move,omitempty"`
	Player     int     `json:"player,omitempty"`
	Board      [][]int `json:"board,omitempty"`
	Status     string  `json:"status,omitempty"`
	Winner     string  `json:"winner,omitempty"`
	Reason     string  `json:"reason,omitempty"`
}

type ErrorMessage struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}
