package score

import (
	"crypto/rsa"
	"encoding/base64"
	"fmt"
	"strconv"

	"github.com/medaverse/meda-api/service/persist"
)

// ErrDecryptFailure identifies the envelope field that failed to decrypt
// or parse. Surfaced as a client error; the raw envelope is still archived.
type ErrDecryptFailure struct {
	Field string
	Err   error
}

func (e ErrDecryptFailure) Error() string {
	return fmt.Sprintf("failed to decrypt field %s: %s", e.Field, e.Err)
}

func (e ErrDecryptFailure) Unwrap() error {
	return e.Err
}

// Decryptor holds the two immutable private keys. The score key covers the
// hash and address fields; the info key covers delta and the 15 parameters.
type Decryptor struct {
	scoreKey *rsa.PrivateKey
	infoKey  *rsa.PrivateKey
}

// NewDecryptor loads both keys; either value may be a PEM path or a base64
// PEM blob.
func NewDecryptor(scoreKey, infoKey string) (*Decryptor, error) {
	sk, err := LoadPrivateKey(scoreKey)
	if err != nil {
		return nil, fmt.Errorf("score key: %w", err)
	}
	ik, err := LoadPrivateKey(infoKey)
	if err != nil {
		return nil, fmt.Errorf("info key: %w", err)
	}
	return &Decryptor{scoreKey: sk, infoKey: ik}, nil
}

// Decrypted is the typed result of decrypting all 17 envelope fields.
type Decrypted struct {
	FinalScore    int64
	PlayerAddress persist.Address
	Stats         persist.GameStats
}

// envelopeField binds an envelope field to its key and typed destination.
type envelopeField struct {
	name   string
	value  func(persist.ScoreEnvelope) string
	useKey func(*Decryptor) *rsa.PrivateKey
	assign func(*Decrypted, int64)
}

var scoreKeyOf = func(d *Decryptor) *rsa.PrivateKey { return d.scoreKey }
var infoKeyOf = func(d *Decryptor) *rsa.PrivateKey { return d.infoKey }

// intFields maps every integer envelope field in its fixed order. The
// address field is handled separately since its plaintext is hex.
var intFields = []envelopeField{
	{"hash", func(e persist.ScoreEnvelope) string { return e.Hash }, scoreKeyOf,
		func(d *Decrypted, v int64) { d.FinalScore = v }},
	{"delta", func(e persist.ScoreEnvelope) string { return e.Delta }, infoKeyOf,
		func(d *Decrypted, v int64) { d.Stats.DurationSeconds = v }},
	{"parameter1", func(e persist.ScoreEnvelope) string { return e.Parameter1 }, infoKeyOf,
		func(d *Decrypted, v int64) { d.Stats.EnemiesSpawned = v }},
	{"parameter2", func(e persist.ScoreEnvelope) string { return e.Parameter2 }, infoKeyOf,
		func(d *Decrypted, v int64) { d.Stats.EnemiesKilled = v }},
	{"parameter3", func(e persist.ScoreEnvelope) string { return e.Parameter3 }, infoKeyOf,
		func(d *Decrypted, v int64) { d.Stats.WavesCompleted = v }},
	{"parameter4", func(e persist.ScoreEnvelope) string { return e.Parameter4 }, infoKeyOf,
		func(d *Decrypted, v int64) { d.Stats.TravelDistance = v }},
	{"parameter5", func(e persist.ScoreEnvelope) string { return e.Parameter5 }, infoKeyOf,
		func(d *Decrypted, v int64) { d.Stats.PerksCollected = v }},
	{"parameter6", func(e persist.ScoreEnvelope) string { return e.Parameter6 }, infoKeyOf,
		func(d *Decrypted, v int64) { d.Stats.CoinsCollected = v }},
	{"parameter7", func(e persist.ScoreEnvelope) string { return e.Parameter7 }, infoKeyOf,
		func(d *Decrypted, v int64) { d.Stats.ShieldsCollected = v }},
	{"parameter8", func(e persist.ScoreEnvelope) string { return e.Parameter8 }, infoKeyOf,
		func(d *Decrypted, v int64) { d.Stats.KillingSpreeMult = v }},
	{"parameter9", func(e persist.ScoreEnvelope) string { return e.Parameter9 }, infoKeyOf,
		func(d *Decrypted, v int64) { d.Stats.KillingSpreeDuration = v }},
	{"parameter10", func(e persist.ScoreEnvelope) string { return e.Parameter10 }, infoKeyOf,
		func(d *Decrypted, v int64) { d.Stats.MaxKillingSpree = v }},
	{"parameter11", func(e persist.ScoreEnvelope) string { return e.Parameter11 }, infoKeyOf,
		func(d *Decrypted, v int64) { d.Stats.AttackSpeed = float64(v) / 100.0 }},
	{"parameter12", func(e persist.ScoreEnvelope) string { return e.Parameter12 }, infoKeyOf,
		func(d *Decrypted, v int64) { d.Stats.MaxScorePerEnemy = v }},
	{"parameter13", func(e persist.ScoreEnvelope) string { return e.Parameter13 }, infoKeyOf,
		func(d *Decrypted, v int64) { d.Stats.MaxScorePerEnemyScaled = v }},
	{"parameter14", func(e persist.ScoreEnvelope) string { return e.Parameter14 }, infoKeyOf,
		func(d *Decrypted, v int64) { d.Stats.AbilityUseCount = v }},
	{"parameter15", func(e persist.ScoreEnvelope) string { return e.Parameter15 }, infoKeyOf,
		func(d *Decrypted, v int64) { d.Stats.EnemiesKilledInKillingSpree = v }},
}

// Decrypt processes the full envelope. Fields decrypt to UTF-8 plaintexts:
// signed decimal integers for everything but the address, which is a hex
// wallet string stored lowercased.
func (d *Decryptor) Decrypt(envelope persist.ScoreEnvelope) (Decrypted, error) {
	var out Decrypted

	for _, f := range intFields {
		plain, err := d.decryptField(f.useKey(d), f.value(envelope))
		if err != nil {
			return Decrypted{}, ErrDecryptFailure{Field: f.name, Err: err}
		}
		v, err := strconv.ParseInt(plain, 10, 64)
		if err != nil {
			return Decrypted{}, ErrDecryptFailure{Field: f.name, Err: err}
		}
		f.assign(&out, v)
	}

	plain, err := d.decryptField(d.scoreKey, envelope.Address)
	if err != nil {
		return Decrypted{}, ErrDecryptFailure{Field: "address", Err: err}
	}
	addr, err := persist.ToAddress(plain)
	if err != nil {
		return Decrypted{}, ErrDecryptFailure{Field: "address", Err: err}
	}
	out.PlayerAddress = addr

	return out, nil
}

func (d *Decryptor) decryptField(key *rsa.PrivateKey, ciphertext string) (string, error) {
	raw, err := base64.StdEncoding.DecodeString(ciphertext)
	if err != nil {
		return "", err
	}
	plain, err := rsa.DecryptPKCS1v15(nil, key, raw)
	if err != nil {
		return "", err
	}
	return string(plain), nil
}
