package rules

import (
	"fmt"
	"strings"
)

type BloodType int

const (
	BloodUnknown BloodType = iota
	BloodA
	BloodAA
	BloodAAA
	BloodAcid
	BloodBasic
	BloodO
	BloodONo
	BloodH2O
	BloodElectric
	BloodLove
	BloodFire
	BloodPsychic
	BloodGrass
)

var bloodNames = [...]string{
	"", "a", "aa", "aaa", "acid", "basic", "o", "o_no", "h2o",
	"electric", "love", "fire", "psychic", "grass",
}

func (b BloodType) String() string {
	if b < 0 || int(b) >= len(bloodNames) {
		return fmt.Sprintf("blood(%d)", int(b))
	}
	return bloodNames[b]
}

func ParseBloodType(s string) (BloodType, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for i, name := range bloodNames {
		if name == key {
			return BloodType(i), nil
		}
	}
	return BloodUnknown, fmt.Errorf("unknown blood type %q", s)
}

func (b BloodType) MarshalText() ([]byte, error) { return []byte(b.String()), nil }

func (b *BloodType) UnmarshalText(t []byte) error {
	v, err := ParseBloodType(string(t))
	if err != nil {
		return err
	}
	*b = v
	return nil
}
