package score

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/base64"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medaverse/meda-api/service/persist"
)

func generateKeyPEM(t *testing.T) (*rsa.PrivateKey, string) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	return key, base64.StdEncoding.EncodeToString(pemBytes)
}

func encryptField(t *testing.T, key *rsa.PrivateKey, plaintext string) string {
	t.Helper()
	ct, err := rsa.EncryptPKCS1v15(rand.Reader, &key.PublicKey, []byte(plaintext))
	require.NoError(t, err)
	return base64.StdEncoding.EncodeToString(ct)
}

func testEnvelope(t *testing.T, scoreKey, infoKey *rsa.PrivateKey) persist.ScoreEnvelope {
	t.Helper()
	return persist.ScoreEnvelope{
		Hash:        encryptField(t, scoreKey, "1"),
		Address:     encryptField(t, scoreKey, "0xAb5801a7D398351b8bE11C439e05C5B3259aeC9B"),
		Delta:       encryptField(t, infoKey, "300"),
		Parameter1:  encryptField(t, infoKey, "100"),
		Parameter2:  encryptField(t, infoKey, "80"),
		Parameter3:  encryptField(t, infoKey, "5"),
		Parameter4:  encryptField(t, infoKey, "1234"),
		Parameter5:  encryptField(t, infoKey, "3"),
		Parameter6:  encryptField(t, infoKey, "250"),
		Parameter7:  encryptField(t, infoKey, "2"),
		Parameter8:  encryptField(t, infoKey, "4"),
		Parameter9:  encryptField(t, infoKey, "12"),
		Parameter10: encryptField(t, infoKey, "9"),
		Parameter11: encryptField(t, infoKey, "125"),
		Parameter12: encryptField(t, infoKey, "50"),
		Parameter13: encryptField(t, infoKey, "75"),
		Parameter14: encryptField(t, infoKey, "6"),
		Parameter15: encryptField(t, infoKey, "30"),
	}
}

func TestDecryptRoundTrip(t *testing.T) {
	scoreKey, scoreBlob := generateKeyPEM(t)
	infoKey, infoBlob := generateKeyPEM(t)

	d, err := NewDecryptor(scoreBlob, infoBlob)
	require.NoError(t, err)

	dec, err := d.Decrypt(testEnvelope(t, scoreKey, infoKey))
	require.NoError(t, err)

	assert.EqualValues(t, 1, dec.FinalScore)
	assert.Equal(t, persist.Address("0xab5801a7d398351b8be11c439e05c5b3259aec9b"), dec.PlayerAddress)
	assert.EqualValues(t, 300, dec.Stats.DurationSeconds)
	assert.EqualValues(t, 100, dec.Stats.EnemiesSpawned)
	assert.EqualValues(t, 80, dec.Stats.EnemiesKilled)
	assert.EqualValues(t, 5, dec.Stats.WavesCompleted)
	assert.EqualValues(t, 1234, dec.Stats.TravelDistance)
	assert.EqualValues(t, 3, dec.Stats.PerksCollected)
	assert.EqualValues(t, 250, dec.Stats.CoinsCollected)
	assert.EqualValues(t, 2, dec.Stats.ShieldsCollected)
	assert.EqualValues(t, 4, dec.Stats.KillingSpreeMult)
	assert.EqualValues(t, 12, dec.Stats.KillingSpreeDuration)
	assert.EqualValues(t, 9, dec.Stats.MaxKillingSpree)
	assert.InDelta(t, 1.25, dec.Stats.AttackSpeed, 1e-9)
	assert.EqualValues(t, 50, dec.Stats.MaxScorePerEnemy)
	assert.EqualValues(t, 75, dec.Stats.MaxScorePerEnemyScaled)
	assert.EqualValues(t, 6, dec.Stats.AbilityUseCount)
	assert.EqualValues(t, 30, dec.Stats.EnemiesKilledInKillingSpree)
}

func TestDecryptWrongKeyRejected(t *testing.T) {
	scoreKey, scoreBlob := generateKeyPEM(t)
	infoKey, infoBlob := generateKeyPEM(t)

	d, err := NewDecryptor(scoreBlob, infoBlob)
	require.NoError(t, err)

	// hash encrypted under the info key must fail under the score key
	envelope := testEnvelope(t, scoreKey, infoKey)
	envelope.Hash = encryptField(t, infoKey, "1")

	_, err = d.Decrypt(envelope)
	var decErr ErrDecryptFailure
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "hash", decErr.Field)
}

func TestDecryptRejectsBadAddress(t *testing.T) {
	scoreKey, scoreBlob := generateKeyPEM(t)
	infoKey, infoBlob := generateKeyPEM(t)

	d, err := NewDecryptor(scoreBlob, infoBlob)
	require.NoError(t, err)

	envelope := testEnvelope(t, scoreKey, infoKey)
	envelope.Address = encryptField(t, scoreKey, "not-an-address")

	_, err = d.Decrypt(envelope)
	var decErr ErrDecryptFailure
	require.ErrorAs(t, err, &decErr)
	assert.Equal(t, "address", decErr.Field)
}

func TestLoadPrivateKeyFromFile(t *testing.T) {
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})

	path := filepath.Join(t.TempDir(), "key.pem")
	require.NoError(t, os.WriteFile(path, pemBytes, 0o600))

	loaded, err := LoadPrivateKey(path)
	require.NoError(t, err)
	assert.True(t, key.Equal(loaded))
}

func TestLoadPrivateKeyRejectsGarbage(t *testing.T) {
	_, err := LoadPrivateKey("definitely-not-a-key")
	assert.Error(t, err)

	_, err = LoadPrivateKey("")
	assert.Error(t, err)
}
