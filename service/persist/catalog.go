package persist

import (
	"context"
	"fmt"
	"strings"
)

// CardClass is the five-element hero class enum. Stored capitalized in the
// characters catalog, rendered upper-cased in responses.
type CardClass string

const (
	CardClassHarvester     CardClass = "Harvester"
	CardClassWarmonger     CardClass = "Warmonger"
	CardClassDefender      CardClass = "Defender"
	CardClassSpecialist    CardClass = "Specialist"
	CardClassRevolutionist CardClass = "Revolutionist"
)

var cardClasses = map[string]CardClass{
	"harvester":     CardClassHarvester,
	"warmonger":     CardClassWarmonger,
	"defender":      CardClassDefender,
	"specialist":    CardClassSpecialist,
	"revolutionist": CardClassRevolutionist,
}

// ToCardClass validates a class string against the enum, case-insensitively.
// Unknown classes fall back to Specialist, matching the hero catalog default.
func ToCardClass(raw string) CardClass {
	if c, ok := cardClasses[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return c
	}
	return CardClassSpecialist
}

// Render returns the wire form of the class.
func (c CardClass) Render() string {
	return strings.ToUpper(string(c))
}

// Character is a static catalog entry keyed by season card id.
type Character struct {
	SeasonCardID uint64    `json:"season_card_id"`
	Title        string    `json:"title"`
	Fraction     string    `json:"fraction"`
	Class        CardClass `json:"class"`
}

// DefaultCharacter is the deterministic fallback for a missing catalog row.
func DefaultCharacter(bcID uint64) Character {
	return Character{
		Title:    fmt.Sprintf("Hero #%d", bcID),
		Fraction: "Neutral",
		Class:    CardClassSpecialist,
	}
}

// WeaponMappingKey identifies a weapon display-name mapping.
type WeaponMappingKey struct {
	Tier     uint64
	Type     uint64
	Subtype  uint64
	Category uint64
}

// WeaponMapping is a static catalog entry mapping a weapon tuple to a name.
type WeaponMapping struct {
	WeaponMappingKey
	Name string `json:"weapon_name"`
}

// FallbackWeaponName renders the deterministic name for an unmapped tuple.
func FallbackWeaponName(key WeaponMappingKey) string {
	kind := "Weapon"
	switch key.Type {
	case 1:
		kind = "Sword"
	case 2:
		kind = "Gun"
	}
	return fmt.Sprintf("T%d %s #%d", key.Tier, kind, key.Category)
}

// Contract is a configured chain contract keyed by logical name.
type Contract struct {
	Name    string       `json:"name"`
	Address Address      `json:"address"`
	Kind    ContractKind `json:"kind"`
	Active  bool         `json:"active"`
}

// CatalogRepository serves the static tables loaded from the durable store.
type CatalogRepository interface {
	CharacterBySeasonCardID(ctx context.Context, seasonCardID uint64) (Character, bool, error)
	WeaponName(ctx context.Context, key WeaponMappingKey) (string, bool, error)
	ContractByName(ctx context.Context, name string) (Contract, error)
}
