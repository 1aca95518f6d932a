package types

import (
	"fmt"
	"strings"
)

// Side is the side of the book an order trades on.
type Side uint8

const (
	SideBuy  Side = 1
	SideSell Side = 2
)

// Kind distinguishes market orders from limit orders.
type Kind uint8

const (
	KindMarket Kind = 1
	KindLimit  Kind = 2
)

// TimeInForce is the policy applied to the unmatched part of an order.
type TimeInForce uint8

const (
	// FOK (fill-or-kill) orders must execute in full or fail.
	FOK TimeInForce = 1
	// IOC (immediate-or-cancel) orders execute what they can and discard the rest.
	IOC TimeInForce = 2
	// GTC (good-till-canceled) orders rest in the book until matched.
	GTC TimeInForce = 3
)

// Status is the lifecycle state of an order.
type Status uint8

const (
	StatusCreated  Status = 1
	StatusMatched  Status = 2
	StatusPartial  Status = 3
	StatusFilled   Status = 4
	StatusCanceled Status = 5
)

var (
	sideNames = map[Side]string{
		SideBuy:  "buy",
		SideSell: "sell",
	}
	kindNames = map[Kind]string{
		KindMarket: "market",
		KindLimit:  "limit",
	}
	tifNames = map[TimeInForce]string{
		FOK: "fok",
		IOC: "ioc",
		GTC: "gtc",
	}
	statusNames = map[Status]string{
		StatusCreated:  "created",
		StatusMatched:  "matched",
		StatusPartial:  "partial",
		StatusFilled:   "filled",
		StatusCanceled: "canceled",
	}
)

func enumFromUint8[T ~uint8](what string, names map[T]string, v uint8) (T, error) {
	if _, ok := names[T(v)]; !ok {
		return 0, fmt.Errorf("invalid %s value %d", what, v)
	}
	return T(v), nil
}

func parseEnum[T ~uint8](what string, names map[T]string, s string) (T, error) {
	s = strings.ToLower(s)
	for v, name := range names {
		if name == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("invalid %s %q", what, s)
}

func marshalEnum[T ~uint8](what string, names map[T]string, v T) ([]byte, error) {
	name, ok := names[v]
	if !ok {
		return nil, fmt.Errorf("invalid %s value %d", what, uint8(v))
	}
	return []byte(name), nil
}

func enumString[T ~uint8](names map[T]string, v T) string {
	if name, ok := names[v]; ok {
		return name
	}
	return fmt.Sprintf("unknown(%d)", uint8(v))
}

// SideFromUint8 converts a raw value into a Side.
func SideFromUint8(v uint8) (Side, error) { return enumFromUint8("side", sideNames, v) }

// ParseSide converts a name ("buy", "sell") into a Side.
func ParseSide(s string) (Side, error) { return parseEnum("side", sideNames, s) }

func (s Side) IsValid() bool {
	_, ok := sideNames[s]
	return ok
}

func (s Side) String() string { return enumString(sideNames, s) }

// Opposite returns the side an order of side s matches against.
func (s Side) Opposite() Side {
	if s == SideBuy {
		return SideSell
	}
	return SideBuy
}

func (s Side) MarshalText() ([]byte, error) { return marshalEnum("side", sideNames, s) }

func (s *Side) UnmarshalText(text []byte) (err error) {
	*s, err = ParseSide(string(text))
	return err
}

func KindFromUint8(v uint8) (Kind, error) { return enumFromUint8("kind", kindNames, v) }
func ParseKind(s string) (Kind, error)    { return parseEnum("kind", kindNames, s) }

func (k Kind) IsValid() bool {
	_, ok := kindNames[k]
	return ok
}

func (k Kind) String() string               { return enumString(kindNames, k) }
func (k Kind) MarshalText() ([]byte, error) { return marshalEnum("kind", kindNames, k) }

func (k *Kind) UnmarshalText(text []byte) (err error) {
	*k, err = ParseKind(string(text))
	return err
}

func TimeInForceFromUint8(v uint8) (TimeInForce, error) {
	return enumFromUint8("time in force", tifNames, v)
}

func ParseTimeInForce(s string) (TimeInForce, error) {
	return parseEnum("time in force", tifNames, s)
}

func (t TimeInForce) IsValid() bool {
	_, ok := tifNames[t]
	return ok
}

func (t TimeInForce) String() string { return enumString(tifNames, t) }

func (t TimeInForce) MarshalText() ([]byte, error) {
	return marshalEnum("time in force", tifNames, t)
}

func (t *TimeInForce) UnmarshalText(text []byte) (err error) {
	*t, err = ParseTimeInForce(string(text))
	return err
}

func StatusFromUint8(v uint8) (Status, error) { return enumFromUint8("status", statusNames, v) }
func ParseStatus(s string) (Status, error)    { return parseEnum("status", statusNames, s) }

func (s Status) IsValid() bool {
	_, ok := statusNames[s]
	return ok
}

func (s Status) String() string               { return enumString(statusNames, s) }
func (s Status) MarshalText() ([]byte, error) { return marshalEnum("status", statusNames, s) }

func (s *Status) UnmarshalText(text []byte) (err error) {
	*s, err = ParseStatus(string(text))
	return err
}
