package td2000

import (
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// Model describes one member of the TD-2000 family.
type Model struct {
	Code ModelCode
	Name string
	DPI  int
	// HeadBytes is the width of one raster line in bytes.
	HeadBytes int
}

var models = map[ModelCode]Model{
	ModelTD2020:    {ModelTD2020, "TD-2020", 203, 56},
	ModelTD2120N:   {ModelTD2120N, "TD-2120N", 203, 56},
	ModelTD2130N:   {ModelTD2130N, "TD-2130N", 300, 84},
	ModelTD2030:    {ModelTD2030, "TD-2030", 203, 56},
	ModelTD2125N:   {ModelTD2125N, "TD-2125N", 203, 56},
	ModelTD2125NWB: {ModelTD2125NWB, "TD-2125NWB", 203, 56},
	ModelTD2135N:   {ModelTD2135N, "TD-2135N", 300, 84},
	ModelTD2135NWB: {ModelTD2135NWB, "TD-2135NWB", 300, 84},
}

// LookupModel returns the model table entry for code.
func LookupModel(code ModelCode) (Model, error) {
	m, ok := models[code]
	if !ok {
		return Model{}, unknownCode("model", byte(code))
	}
	return m, nil
}

// ModelByName finds a model by its product name, case-insensitive, with or without the "TD-" prefix.
func ModelByName(name string) (Model, error) {
	want := strings.TrimPrefix(strings.ToUpper(name), "TD-")
	for _, code := range lo.Keys(models) {
		if strings.TrimPrefix(models[code].Name, "TD-") == want {
			return models[code], nil
		}
	}
	return Model{}, errors.Errorf("unknown model %q", name)
}
