package abi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"math/big"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
	"github.com/trebuchet-org/zkdeploy/internal/usecase"
)

// ConstructorEncoder converts loosely typed constructor arguments (CLI
// strings, JSON or YAML values) to their ABI types and appends the packed
// result to the creation bytecode.
type ConstructorEncoder struct{}

// NewConstructorEncoder creates a new constructor encoder
func NewConstructorEncoder() *ConstructorEncoder {
	return &ConstructorEncoder{}
}

// EncodeDeployment returns bytecode ++ abi.encode(args)
func (e *ConstructorEncoder) EncodeDeployment(artifact *models.Artifact, args []any) ([]byte, error) {
	if len(artifact.Bytecode) == 0 {
		return nil, fmt.Errorf("%s has no creation bytecode (abstract contract or interface?)", artifact.Name)
	}

	inputs := artifact.ABI.Constructor.Inputs
	if len(args) != len(inputs) {
		return nil, fmt.Errorf("%w: %s constructor takes %d argument(s) (%s), got %d",
			domain.ErrInvalidArgument, artifact.Name, len(inputs), Signature(inputs), len(args))
	}

	values, err := ConvertArguments(inputs, args)
	if err != nil {
		return nil, err
	}

	packed, err := inputs.Pack(values...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArgument, err)
	}

	code := make([]byte, 0, len(artifact.Bytecode)+len(packed))
	code = append(code, artifact.Bytecode...)
	return append(code, packed...), nil
}

// Signature renders argument types, e.g. "address[] owners, uint256 required"
func Signature(inputs abi.Arguments) string {
	parts := make([]string, len(inputs))
	for i, in := range inputs {
		parts[i] = strings.TrimSpace(in.Type.String() + " " + in.Name)
	}
	return strings.Join(parts, ", ")
}

// ConvertArguments converts each value to the Go type go-ethereum packs for
// the matching input.
func ConvertArguments(inputs abi.Arguments, args []any) ([]any, error) {
	values := make([]any, len(args))
	for i, input := range inputs {
		v, err := convertValue(input.Type, args[i])
		if err != nil {
			name := input.Name
			if name == "" {
				name = fmt.Sprintf("#%d", i)
			}
			return nil, fmt.Errorf("%w %s (%s): %v", domain.ErrInvalidArgument, name, input.Type.String(), err)
		}
		values[i] = v.Interface()
	}
	return values, nil
}

func convertValue(t abi.Type, v any) (reflect.Value, error) {
	switch t.T {
	case abi.AddressTy:
		return convertAddress(v)
	case abi.BoolTy:
		return convertBool(v)
	case abi.StringTy:
		s, ok := v.(string)
		if !ok {
			return reflect.Value{}, fmt.Errorf("expected string, got %T", v)
		}
		return reflect.ValueOf(s), nil
	case abi.BytesTy:
		b, err := toBytes(v)
		if err != nil {
			return reflect.Value{}, err
		}
		return reflect.ValueOf(b), nil
	case abi.FixedBytesTy:
		return convertFixedBytes(t, v)
	case abi.IntTy, abi.UintTy:
		return convertInteger(t, v)
	case abi.SliceTy, abi.ArrayTy:
		return convertList(t, v)
	case abi.TupleTy:
		return convertTuple(t, v)
	default:
		return reflect.Value{}, fmt.Errorf("unsupported type %s", t.String())
	}
}

func convertAddress(v any) (reflect.Value, error) {
	switch val := v.(type) {
	case common.Address:
		return reflect.ValueOf(val), nil
	case string:
		if !common.IsHexAddress(val) {
			return reflect.Value{}, fmt.Errorf("invalid address %q", val)
		}
		return reflect.ValueOf(common.HexToAddress(val)), nil
	default:
		return reflect.Value{}, fmt.Errorf("expected address, got %T", v)
	}
}

func convertBool(v any) (reflect.Value, error) {
	switch val := v.(type) {
	case bool:
		return reflect.ValueOf(val), nil
	case string:
		b, err := strconv.ParseBool(val)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("invalid bool %q", val)
		}
		return reflect.ValueOf(b), nil
	default:
		return reflect.Value{}, fmt.Errorf("expected bool, got %T", v)
	}
}

func toBytes(v any) ([]byte, error) {
	switch val := v.(type) {
	case []byte:
		return val, nil
	case string:
		b, err := hexutil.Decode(val)
		if err != nil {
			return nil, fmt.Errorf("invalid hex bytes %q: %v", val, err)
		}
		return b, nil
	default:
		return nil, fmt.Errorf("expected 0x-prefixed hex, got %T", v)
	}
}

func convertFixedBytes(t abi.Type, v any) (reflect.Value, error) {
	b, err := toBytes(v)
	if err != nil {
		return reflect.Value{}, err
	}
	if len(b) != t.Size {
		return reflect.Value{}, fmt.Errorf("expected %d bytes, got %d", t.Size, len(b))
	}
	arr := reflect.New(t.GetType()).Elem()
	reflect.Copy(arr, reflect.ValueOf(b))
	return arr, nil
}

func convertInteger(t abi.Type, v any) (reflect.Value, error) {
	n, err := toBigInt(v)
	if err != nil {
		return reflect.Value{}, err
	}

	if t.T == abi.UintTy {
		if n.Sign() < 0 {
			return reflect.Value{}, fmt.Errorf("negative value %s for unsigned type", n)
		}
		if n.BitLen() > t.Size {
			return reflect.Value{}, fmt.Errorf("value %s overflows %s", n, t.String())
		}
	} else {
		limit := new(big.Int).Lsh(big.NewInt(1), uint(t.Size-1))
		minimum := new(big.Int).Neg(limit)
		if n.Cmp(limit) >= 0 || n.Cmp(minimum) < 0 {
			return reflect.Value{}, fmt.Errorf("value %s overflows %s", n, t.String())
		}
	}

	goType := t.GetType()
	if goType == reflect.TypeOf(&big.Int{}) {
		return reflect.ValueOf(n), nil
	}
	if t.T == abi.UintTy {
		return reflect.ValueOf(n.Uint64()).Convert(goType), nil
	}
	return reflect.ValueOf(n.Int64()).Convert(goType), nil
}

func toBigInt(v any) (*big.Int, error) {
	switch val := v.(type) {
	case *big.Int:
		return new(big.Int).Set(val), nil
	case int:
		return big.NewInt(int64(val)), nil
	case int64:
		return big.NewInt(val), nil
	case uint64:
		return new(big.Int).SetUint64(val), nil
	case float64:
		if val != math.Trunc(val) {
			return nil, fmt.Errorf("non-integer number %v", val)
		}
		if math.Abs(val) >= 1<<63 {
			return nil, fmt.Errorf("number %v is too large to be exact; quote it as a string", val)
		}
		return big.NewInt(int64(val)), nil
	case json.Number:
		return parseBigInt(val.String())
	case string:
		return parseBigInt(val)
	default:
		return nil, fmt.Errorf("expected integer, got %T", v)
	}
}

// parseBigInt accepts decimal and 0x-prefixed hex, with optional sign
func parseBigInt(s string) (*big.Int, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), "_", "")
	neg := strings.HasPrefix(s, "-")
	digits := strings.TrimPrefix(s, "-")

	base := 10
	if strings.HasPrefix(digits, "0x") || strings.HasPrefix(digits, "0X") {
		base = 16
		digits = digits[2:]
	}
	n, ok := new(big.Int).SetString(digits, base)
	if !ok {
		return nil, fmt.Errorf("invalid integer %q", s)
	}
	if neg {
		n.Neg(n)
	}
	return n, nil
}

func convertList(t abi.Type, v any) (reflect.Value, error) {
	items, err := toList(v)
	if err != nil {
		return reflect.Value{}, err
	}

	var out reflect.Value
	if t.T == abi.ArrayTy {
		if len(items) != t.Size {
			return reflect.Value{}, fmt.Errorf("expected %d elements, got %d", t.Size, len(items))
		}
		out = reflect.New(t.GetType()).Elem()
	} else {
		out = reflect.MakeSlice(t.GetType(), len(items), len(items))
	}

	for i, item := range items {
		elem, err := convertValue(*t.Elem, item)
		if err != nil {
			return reflect.Value{}, fmt.Errorf("element %d: %w", i, err)
		}
		out.Index(i).Set(elem)
	}
	return out, nil
}

// toList accepts []any, []string or a JSON array string ("[a,b]")
func toList(v any) ([]any, error) {
	switch val := v.(type) {
	case []any:
		return val, nil
	case []string:
		out := make([]any, len(val))
		for i, s := range val {
			out[i] = s
		}
		return out, nil
	case string:
		trimmed := strings.TrimSpace(val)
		if !strings.HasPrefix(trimmed, "[") {
			return nil, fmt.Errorf("expected array, got string %q", val)
		}
		dec := json.NewDecoder(bytes.NewReader([]byte(trimmed)))
		dec.UseNumber()
		var items []any
		if err := dec.Decode(&items); err != nil {
			return nil, fmt.Errorf("invalid JSON array %q: %v", val, err)
		}
		return items, nil
	default:
		return nil, fmt.Errorf("expected array, got %T", v)
	}
}

func convertTuple(t abi.Type, v any) (reflect.Value, error) {
	out := reflect.New(t.GetType()).Elem()

	switch val := v.(type) {
	case []any:
		if len(val) != len(t.TupleElems) {
			return reflect.Value{}, fmt.Errorf("expected %d tuple fields, got %d", len(t.TupleElems), len(val))
		}
		for i, elemType := range t.TupleElems {
			field, err := convertValue(*elemType, val[i])
			if err != nil {
				return reflect.Value{}, fmt.Errorf("field %s: %w", t.TupleRawNames[i], err)
			}
			out.Field(i).Set(field)
		}
	case map[string]any:
		for i, elemType := range t.TupleElems {
			name := t.TupleRawNames[i]
			raw, ok := val[name]
			if !ok {
				return reflect.Value{}, fmt.Errorf("missing tuple field %s", name)
			}
			field, err := convertValue(*elemType, raw)
			if err != nil {
				return reflect.Value{}, fmt.Errorf("field %s: %w", name, err)
			}
			out.Field(i).Set(field)
		}
	default:
		return reflect.Value{}, fmt.Errorf("expected tuple as array or object, got %T", v)
	}
	return out, nil
}

var _ usecase.ConstructorEncoder = (*ConstructorEncoder)(nil)
