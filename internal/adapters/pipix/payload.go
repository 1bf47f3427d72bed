package pipix

import (
	"errors"
	"fmt"
	"math"
	"strconv"

	"sharegrab/internal/core/domain"
)

var errWrongType = errors.New("unexpected type")

// payload walks a decoded JSON tree. Numeric path segments index arrays.
type payload struct {
	root map[string]interface{}
}

func (p payload) lookup(keys ...string) (interface{}, error) {
	var cur interface{} = p.root
	for i, key := range keys {
		switch node := cur.(type) {
		case map[string]interface{}:
			v, ok := node[key]
			if !ok || v == nil {
				return nil, &domain.MissingFieldError{Path: keys[:i+1]}
			}
			cur = v
		case []interface{}:
			idx, err := strconv.Atoi(key)
			if err != nil || idx < 0 || idx >= len(node) || node[idx] == nil {
				return nil, &domain.MissingFieldError{Path: keys[:i+1]}
			}
			cur = node[idx]
		default:
			return nil, &domain.MissingFieldError{
				Path: keys[:i],
				Err:  fmt.Errorf("%w: %T is not a container", errWrongType, cur),
			}
		}
	}
	return cur, nil
}

func (p payload) stringAt(keys ...string) (string, error) {
	v, err := p.lookup(keys...)
	if err != nil {
		return "", err
	}
	s, ok := v.(string)
	if !ok {
		return "", &domain.MissingFieldError{Path: keys, Err: fmt.Errorf("%w: want string, got %T", errWrongType, v)}
	}
	return s, nil
}

func (p payload) intAt(keys ...string) (int, error) {
	v, err := p.lookup(keys...)
	if err != nil {
		return 0, err
	}
	f, ok := v.(float64)
	if !ok || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return 0, &domain.MissingFieldError{Path: keys, Err: fmt.Errorf("%w: want integer, got %v", errWrongType, v)}
	}
	return int(f), nil
}
