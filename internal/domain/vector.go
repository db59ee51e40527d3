package domain

import (
	"encoding/json"

	"gorm.io/datatypes"
)

// EncodeVector serialises an embedding vector for storage.
func EncodeVector(v []float32) (datatypes.JSON, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return datatypes.JSON(raw), nil
}

// DecodeVector deserialises a stored embedding vector.
func DecodeVector(raw datatypes.JSON) ([]float32, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	var v []float32
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, err
	}
	return v, nil
}
