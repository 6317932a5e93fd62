package app

import (
	"encoding/json"

	"gorm.io/datatypes"
)

func marshalJSON(v any) datatypes.JSON {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	return datatypes.JSON(payload)
}
