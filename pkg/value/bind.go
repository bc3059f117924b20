package value

import (
	"github.com/go-viper/mapstructure/v2"
)

// Bind decodes v into out, a pointer to a struct with mapstructure tags.
// Scalars convert loosely ("true" fills a bool), the same way settings do.
// Subtrees whose key order matters should be read with Get instead, since
// Bind goes through plain Go maps.
func (v *Value) Bind(out interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(v.ToAny())
}
