package abi

import (
	"encoding/json"
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trebuchet-org/zkdeploy/internal/domain"
	"github.com/trebuchet-org/zkdeploy/internal/domain/models"
)

const multisigABI = `[{"type":"constructor","inputs":[{"name":"_owners","type":"address[]"},{"name":"_required","type":"uint256"}]}]`

const mixedABI = `[{"type":"constructor","inputs":[
	{"name":"name","type":"string"},
	{"name":"decimals","type":"uint8"},
	{"name":"offset","type":"int64"},
	{"name":"salt","type":"bytes32"},
	{"name":"data","type":"bytes"},
	{"name":"paused","type":"bool"},
	{"name":"limits","type":"uint256[2]"},
	{"name":"matrix","type":"uint16[][]"},
	{"name":"cfg","type":"tuple","components":[{"name":"admin","type":"address"},{"name":"fee","type":"uint24"}]}
]}]`

func mustABI(t *testing.T, def string) abi.ABI {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(def))
	require.NoError(t, err)
	return parsed
}

func TestEncodeDeployment(t *testing.T) {
	encoder := NewConstructorEncoder()
	owner1 := common.HexToAddress("0x00000000000000000000000000000000000000a1")
	owner2 := common.HexToAddress("0x00000000000000000000000000000000000000a2")

	t.Run("multisig owners and threshold", func(t *testing.T) {
		artifact := &models.Artifact{Name: "MultiSigWallet", ABI: mustABI(t, multisigABI), Bytecode: []byte{0x60, 0x80}}

		code, err := encoder.EncodeDeployment(artifact, []any{
			[]any{owner1.Hex(), owner2.Hex()},
			"2",
		})
		require.NoError(t, err)

		expected, err := artifact.ABI.Constructor.Inputs.Pack([]common.Address{owner1, owner2}, big.NewInt(2))
		require.NoError(t, err)
		assert.Equal(t, append([]byte{0x60, 0x80}, expected...), code)
	})

	t.Run("array given as JSON string", func(t *testing.T) {
		artifact := &models.Artifact{Name: "MultiSigWallet", ABI: mustABI(t, multisigABI), Bytecode: []byte{0x60}}

		fromString, err := encoder.EncodeDeployment(artifact, []any{`["` + owner1.Hex() + `"]`, "0x01"})
		require.NoError(t, err)
		fromValues, err := encoder.EncodeDeployment(artifact, []any{[]string{owner1.Hex()}, int64(1)})
		require.NoError(t, err)
		assert.Equal(t, fromValues, fromString)
	})

	t.Run("no constructor", func(t *testing.T) {
		artifact := &models.Artifact{Name: "MyToken", ABI: mustABI(t, `[]`), Bytecode: []byte{0x60, 0x80}}
		code, err := encoder.EncodeDeployment(artifact, nil)
		require.NoError(t, err)
		assert.Equal(t, []byte{0x60, 0x80}, code)
	})

	t.Run("wrong argument count", func(t *testing.T) {
		artifact := &models.Artifact{Name: "MultiSigWallet", ABI: mustABI(t, multisigABI), Bytecode: []byte{0x60}}
		_, err := encoder.EncodeDeployment(artifact, []any{"2"})
		require.Error(t, err)
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Contains(t, err.Error(), "address[] _owners, uint256 _required")
	})

	t.Run("empty bytecode", func(t *testing.T) {
		artifact := &models.Artifact{Name: "IERC20", ABI: mustABI(t, `[]`)}
		_, err := encoder.EncodeDeployment(artifact, nil)
		assert.Error(t, err)
	})
}

func TestConvertArguments(t *testing.T) {
	inputs := mustABI(t, mixedABI).Constructor.Inputs
	admin := common.HexToAddress("0x00000000000000000000000000000000000000ad")

	valid := []any{
		"My Token",
		json.Number("18"),
		"-5",
		"0x" + strings.Repeat("ab", 32),
		"0xdeadbeef",
		"true",
		[]any{float64(1), "0xff"},
		[]any{[]any{int64(1), int64(2)}, []any{}},
		map[string]any{"admin": admin.Hex(), "fee": 3000},
	}

	values, err := ConvertArguments(inputs, valid)
	require.NoError(t, err)

	assert.Equal(t, "My Token", values[0])
	assert.Equal(t, uint8(18), values[1])
	assert.Equal(t, int64(-5), values[2])
	assert.Equal(t, byte(0xab), values[3].([32]byte)[31])
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, values[4])
	assert.Equal(t, true, values[5])
	assert.Equal(t, [2]*big.Int{big.NewInt(1), big.NewInt(255)}, values[6])
	assert.Equal(t, [][]uint16{{1, 2}, {}}, values[7])

	_, err = inputs.Pack(values...)
	require.NoError(t, err, "converted values must be packable")

	t.Run("tuple given positionally", func(t *testing.T) {
		positional := append([]any{}, valid...)
		positional[8] = []any{admin.Hex(), "3000"}
		values, err := ConvertArguments(inputs, positional)
		require.NoError(t, err)
		_, err = inputs.Pack(values...)
		require.NoError(t, err)
	})

	invalid := []struct {
		name    string
		index   int
		value   any
		wantErr string
	}{
		{"uint8 overflow", 1, "256", "overflows uint8"},
		{"negative unsigned", 7, []any{[]any{"-1"}}, "negative value"},
		{"int64 overflow", 2, "9223372036854775808", "overflows int64"},
		{"fractional", 1, 1.5, "non-integer"},
		{"short bytes32", 3, "0xabcd", "expected 32 bytes"},
		{"bad hex", 4, "nothex", "invalid hex"},
		{"bad bool", 5, "yes", "invalid bool"},
		{"fixed array length", 6, []any{"1"}, "expected 2 elements"},
		{"missing tuple field", 8, map[string]any{"admin": admin.Hex()}, "missing tuple field fee"},
		{"string type", 0, 42, "expected string"},
	}
	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			args := append([]any{}, valid...)
			args[tt.index] = tt.value
			_, err := ConvertArguments(inputs, args)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestConvertAddress(t *testing.T) {
	inputs := mustABI(t, multisigABI).Constructor.Inputs

	_, err := ConvertArguments(inputs, []any{[]any{"0x123"}, "1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid address "0x123"`)
	assert.Contains(t, err.Error(), "_owners")
}

func TestParseBigInt(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"0", "0"},
		{"1_000_000", "1000000"},
		{"0xff", "255"},
		{"-0x10", "-16"},
		{"1000000000000000000000", "1000000000000000000000"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			n, err := parseBigInt(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, n.String())
		})
	}

	_, err := parseBigInt("12abc")
	assert.Error(t, err)
}

func TestConvertArguments_LargeIntegers(t *testing.T) {
	inputs := mustABI(t, multisigABI).Constructor.Inputs
	owners := []any{"0x00000000000000000000000000000000000000a1"}
	supply, _ := new(big.Int).SetString("1000000000000000000000", 10)

	for _, arg := range []any{supply, "1000000000000000000000", json.Number("1000000000000000000000")} {
		values, err := ConvertArguments(inputs, []any{owners, arg})
		require.NoError(t, err)
		assert.Equal(t, 0, supply.Cmp(values[1].(*big.Int)))
	}

	_, err := ConvertArguments(inputs, []any{owners, float64(1e21)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quote it as a string")
}
