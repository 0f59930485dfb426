package models

// Player узел в графе. Создаётся через CRUD-слой, ядро симуляции
// только читает его.
type Player struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Nationality string `json:"nationality,omitempty"`
}
