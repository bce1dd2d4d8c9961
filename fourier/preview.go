package fourier

import (
	"strconv"

	"github.com/linuxmatters/specan/format"
)

// Preview renders the expanded component list as a table of
// [Index, Key, Type, Tag, Spec] rows, one per component the engine
// would measure.
func (c *Config) Preview(cplx bool) (string, error) {
	keys, comps, _, err := c.GenerateComps(cplx)
	if err != nil {
		return "", err
	}
	header := [][]string{{"Index", "Key", "Type", "Tag", "Spec"}}
	data := make([][]string, 0, len(keys))
	for i, key := range keys {
		comp := comps[key]
		data = append(data, []string{
			strconv.Itoa(i),
			key,
			comp.Type.String(),
			comp.Tag.String(),
			comp.Spec(),
		})
	}
	return format.Table(header, data, 2, true, true), nil
}
