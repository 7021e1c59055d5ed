package model

type SportCategory struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Province struct {
	ID   int64  `json:"id"`
	Name string `json:"province_name"`
}

type City struct {
	ID         int64    `json:"id"`
	Name       string   `json:"city_name"`
	ProvinceID int64    `json:"province_id,omitempty"`
	Province   Province `json:"province"`
}
