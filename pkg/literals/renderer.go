package literals

import (
	"fmt"
	"strconv"

	"github.com/platinummonkey/ratchet/pkg/shape"
)

// Renderer renders a default value into target-language literal syntax
type Renderer interface {
	Render(scalar shape.ScalarType, value *shape.DefaultValue) (string, error)
}

// GoRenderer renders default values as Go literals
type GoRenderer struct{}

// NewGoRenderer creates a Go literal renderer
func NewGoRenderer() *GoRenderer {
	return &GoRenderer{}
}

// Render renders the default value as a Go literal for the given scalar type
func (r *GoRenderer) Render(scalar shape.ScalarType, value *shape.DefaultValue) (string, error) {
	if value == nil {
		return "", fmt.Errorf("no default value to render")
	}
	switch value.Kind {
	case shape.DefaultBool:
		return strconv.FormatBool(value.Bool), nil
	case shape.DefaultNumber:
		switch scalar {
		case shape.ScalarInteger, shape.ScalarLong:
			return strconv.FormatInt(int64(value.Number), 10), nil
		default:
			return strconv.FormatFloat(value.Number, 'g', -1, 64), nil
		}
	case shape.DefaultString:
		return strconv.Quote(value.String), nil
	default:
		return "", fmt.Errorf("unsupported default literal kind %d", value.Kind)
	}
}
