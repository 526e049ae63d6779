package enrich

// Wire shapes consumed by the game client. The Unity views are the full
// renders; the slim views drop everything the client can derive.

// HeroMetadata is the nested metadata block of a hero render.
type HeroMetadata struct {
	Sec          uint64 `json:"sec"`
	Ano          uint64 `json:"ano"`
	Inn          uint64 `json:"inn"`
	Revolution   bool   `json:"revolution"`
	SeasonCardID uint64 `json:"season_card_id"`
}

// HeroReward carries the serial-derived reward power.
type HeroReward struct {
	Power uint64 `json:"power"`
}

// HeroUnityEntry is the full per-hero render.
type HeroUnityEntry struct {
	ID        uint64       `json:"id"`
	BCID      uint64       `json:"bc_id"`
	Title     string       `json:"title"`
	Fraction  string       `json:"fraction"`
	Owner     string       `json:"owner"`
	CardClass string       `json:"card_class"`
	Reward    HeroReward   `json:"reward"`
	Metadata  HeroMetadata `json:"metadata"`
}

// HeroEnvelope is the paginated-looking wrapper the client expects. The
// backend never pages, so next is always null.
type HeroEnvelope struct {
	Results []HeroUnityEntry `json:"results"`
	Count   int              `json:"count"`
	Next    *string          `json:"next"`
}

// HeroSlimMetadata is the minimal hero metadata block.
type HeroSlimMetadata struct {
	Sec          uint64 `json:"sec"`
	Ano          uint64 `json:"ano"`
	Inn          uint64 `json:"inn"`
	SeasonCardID uint64 `json:"season_card_id"`
}

// HeroSlimEntry is the minimal per-hero render.
type HeroSlimEntry struct {
	BCID     uint64           `json:"bc_id"`
	Metadata HeroSlimMetadata `json:"metadata"`
}

// WeaponMetadata is the nested metadata block of a weapon render.
type WeaponMetadata struct {
	WeaponTier    uint64 `json:"weapon_tier"`
	WeaponType    uint64 `json:"weapon_type"`
	WeaponSubtype uint64 `json:"weapon_subtype"`
	Category      uint64 `json:"category"`
	SerialNumber  uint64 `json:"serial_number"`
}

// WeaponUnityEntry is the full per-weapon render. Minted and burned are
// fixed: a token the chain enumerates is by definition minted and unburned.
type WeaponUnityEntry struct {
	ID              uint64         `json:"id"`
	BCID            uint64         `json:"bc_id"`
	OwnerAddress    string         `json:"owner_address"`
	ContractAddress string         `json:"contract_address"`
	WeaponName      string         `json:"weapon_name"`
	Security        uint64         `json:"security"`
	Anonymity       uint64         `json:"anonymity"`
	Innovation      uint64         `json:"innovation"`
	Minted          bool           `json:"minted"`
	Burned          bool           `json:"burned"`
	Metadata        WeaponMetadata `json:"metadata"`
}

// WeaponSlimEntry is the minimal per-weapon render.
type WeaponSlimEntry struct {
	BCID       uint64 `json:"bc_id"`
	WeaponName string `json:"weapon_name"`
	Security   uint64 `json:"security"`
	Anonymity  uint64 `json:"anonymity"`
	Innovation uint64 `json:"innovation"`
}

// RenderHeroEnvelope renders heroes to the full Unity wrapper.
func RenderHeroEnvelope(heroes []EnrichedHero) HeroEnvelope {
	results := make([]HeroUnityEntry, len(heroes))
	for i, h := range heroes {
		results[i] = HeroUnityEntry{
			ID:        h.Token.BCID,
			BCID:      h.Token.BCID,
			Title:     h.Character.Title,
			Fraction:  h.Character.Fraction,
			Owner:     h.Owner.String(),
			CardClass: h.Character.Class.Render(),
			Reward:    HeroReward{Power: h.Token.SerialNumber},
			Metadata: HeroMetadata{
				Sec:          h.Token.Sec,
				Ano:          h.Token.Ano,
				Inn:          h.Token.Inn,
				Revolution:   h.Token.Revolution(),
				SeasonCardID: h.Token.SeasonCardID,
			},
		}
	}
	return HeroEnvelope{Results: results, Count: len(results), Next: nil}
}

// RenderHeroSlim renders heroes to the minimal view.
func RenderHeroSlim(heroes []EnrichedHero) []HeroSlimEntry {
	out := make([]HeroSlimEntry, len(heroes))
	for i, h := range heroes {
		out[i] = HeroSlimEntry{
			BCID: h.Token.BCID,
			Metadata: HeroSlimMetadata{
				Sec:          h.Token.Sec,
				Ano:          h.Token.Ano,
				Inn:          h.Token.Inn,
				SeasonCardID: h.Token.SeasonCardID,
			},
		}
	}
	return out
}

// RenderWeaponUnity renders weapons to the full view, a bare array on the wire.
func RenderWeaponUnity(weapons []EnrichedWeapon) []WeaponUnityEntry {
	out := make([]WeaponUnityEntry, len(weapons))
	for i, w := range weapons {
		out[i] = WeaponUnityEntry{
			ID:              w.Token.BCID,
			BCID:            w.Token.BCID,
			OwnerAddress:    w.Owner.String(),
			ContractAddress: w.ContractAddress.String(),
			WeaponName:      w.WeaponName,
			Security:        w.Token.Security,
			Anonymity:       w.Token.Anonymity,
			Innovation:      w.Token.Innovation,
			Minted:          true,
			Burned:          false,
			Metadata: WeaponMetadata{
				WeaponTier:    w.Token.WeaponTier,
				WeaponType:    w.Token.WeaponType,
				WeaponSubtype: w.Token.WeaponSubtype,
				Category:      w.Token.Category,
				SerialNumber:  w.Token.SerialNumber,
			},
		}
	}
	return out
}

// RenderWeaponSlim renders weapons to the minimal view.
func RenderWeaponSlim(weapons []EnrichedWeapon) []WeaponSlimEntry {
	out := make([]WeaponSlimEntry, len(weapons))
	for i, w := range weapons {
		out[i] = WeaponSlimEntry{
			BCID:       w.Token.BCID,
			WeaponName: w.WeaponName,
			Security:   w.Token.Security,
			Anonymity:  w.Token.Anonymity,
			Innovation: w.Token.Innovation,
		}
	}
	return out
}
