package beacon

import "errors"

var ErrMalformed = errors.New("beacon: malformed advertising data")

// Field is one AD structure: a type byte and its data.
type Field struct {
	Type byte
	Data []byte
}

// Walk calls fn for each AD structure in payload until fn returns false.
// A zero length byte ends the payload (trailing padding). Data slices
// alias payload.
func Walk(payload []byte, fn func(Field) bool) error {
	for i := 0; i < len(payload); {
		n := int(payload[i])
		if n == 0 {
			return nil
		}
		if i+1+n > len(payload) {
			return ErrMalformed
		}
		if !fn(Field{Type: payload[i+1], Data: payload[i+2 : i+1+n]}) {
			return nil
		}
		i += 1 + n
	}
	return nil
}

// Fields collects the AD structures of payload.
func Fields(payload []byte) ([]Field, error) {
	var out []Field
	err := Walk(payload, func(f Field) bool {
		out = append(out, f)
		return true
	})
	return out, err
}
