package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"math/big"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"
)

// BigInt is an arbitrary-precision integer used for every monetary and
// metered-quantity value. It stores as a numeric column and serializes
// to JSON as a decimal string so values beyond the float64 safe range
// survive the transport boundary intact.
type BigInt struct {
	value big.Int
}

var ErrInvalidBigInt = errors.New("invalid_bigint")

func NewBigInt(v int64) BigInt {
	var b BigInt
	b.value.SetInt64(v)
	return b
}

// ParseBigInt parses a decimal-digit string, with optional leading sign.
func ParseBigInt(raw string) (BigInt, error) {
	var b BigInt
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return b, ErrInvalidBigInt
	}
	if _, ok := b.value.SetString(raw, 10); !ok {
		return b, ErrInvalidBigInt
	}
	return b, nil
}

func (b BigInt) String() string { return b.value.String() }

func (b BigInt) Int() *big.Int { return new(big.Int).Set(&b.value) }

func (b BigInt) Add(other BigInt) BigInt {
	var out BigInt
	out.value.Add(&b.value, &other.value)
	return out
}

func (b BigInt) Sub(other BigInt) BigInt {
	var out BigInt
	out.value.Sub(&b.value, &other.value)
	return out
}

func (b BigInt) Mul(other BigInt) BigInt {
	var out BigInt
	out.value.Mul(&b.value, &other.value)
	return out
}

func (b BigInt) Cmp(other BigInt) int { return b.value.Cmp(&other.value) }

func (b BigInt) Sign() int { return b.value.Sign() }

func (b BigInt) IsZero() bool { return b.value.Sign() == 0 }

// MarshalJSON renders the value as a quoted decimal string.
func (b BigInt) MarshalJSON() ([]byte, error) {
	return []byte(`"` + b.value.String() + `"`), nil
}

// UnmarshalJSON accepts both a quoted decimal string and a bare JSON
// number.
func (b *BigInt) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	raw = strings.Trim(raw, `"`)
	parsed, err := ParseBigInt(raw)
	if err != nil {
		return err
	}
	b.value.Set(&parsed.value)
	return nil
}

// Value implements driver.Valuer. Numeric columns accept the decimal
// string form on every supported dialect.
func (b BigInt) Value() (driver.Value, error) {
	return b.value.String(), nil
}

// Scan implements sql.Scanner.
func (b *BigInt) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		b.value.SetInt64(0)
		return nil
	case int64:
		b.value.SetInt64(v)
		return nil
	case []byte:
		return b.setString(string(v))
	case string:
		return b.setString(v)
	case float64:
		// sqlite reports numeric affinity columns as float64; only
		// integral values are ever stored.
		bf := new(big.Float).SetFloat64(v)
		if _, acc := bf.Int(&b.value); acc != big.Exact {
			return fmt.Errorf("scan bigint: non-integral value %v", v)
		}
		return nil
	default:
		return fmt.Errorf("scan bigint: unsupported type %T", src)
	}
}

func (b *BigInt) setString(raw string) error {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		b.value.SetInt64(0)
		return nil
	}
	if _, ok := b.value.SetString(raw, 10); !ok {
		return fmt.Errorf("scan bigint: malformed value %q", raw)
	}
	return nil
}

// GormDBDataType keeps the column exact on every dialect the service
// runs against.
func (BigInt) GormDBDataType(db *gorm.DB, field *schema.Field) string {
	switch db.Dialector.Name() {
	case "postgres", "mysql":
		return "numeric(38,0)"
	default:
		return "text"
	}
}
