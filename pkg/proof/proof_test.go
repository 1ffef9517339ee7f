package proof

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildTemplate(t *testing.T) {
	b64, err := BuildTemplate("0x8ba1f109551bD432803012645Ac136ddd64DBA72", "site.com")
	require.NoError(t, err)

	tx, err := Decode(b64)
	require.NoError(t, err)
	assert.Equal(t, "0", tx.Value)
	assert.Equal(t, "site.com", tx.Origin)
	assert.Empty(t, tx.Memo)

	_, err = tx.ExtractMemo()
	assert.ErrorIs(t, err, ErrNoMemo)
}

func TestBuildTemplateRejectsBadAddress(t *testing.T) {
	_, err := BuildTemplate("not-an-address", "site.com")
	assert.Error(t, err)
}

func TestSignAndVerifyRoundTrip(t *testing.T) {
	priv, err := crypto.GenerateKey()
	require.NoError(t, err)
	addr := crypto.PubkeyToAddress(priv.PublicKey)

	template, err := BuildTemplate(addr.Hex(), "site.com")
	require.NoError(t, err)

	signed, err := Sign(template, priv)
	require.NoError(t, err)

	tx, err := Decode(signed)
	require.NoError(t, err)

	recovered, err := Verify(tx, "site.com")
	require.NoError(t, err)
	assert.Equal(t, addr, recovered)
}

func TestVerifyRejectsWrongOrigin(t *testing.T) {
	priv, _ := crypto.GenerateKey()
	addr := crypto.PubkeyToAddress(priv.PublicKey)

	template, _ := BuildTemplate(addr.Hex(), "site.com")
	signed, _ := Sign(template, priv)
	tx, err := Decode(signed)
	require.NoError(t, err)

	// 签名绑定的是 site.com, 换个 origin 校验应失败
	_, err = Verify(tx, "other.com")
	assert.ErrorIs(t, err, ErrBadSignature)
}

func TestVerifyRejectsTamperedMemo(t *testing.T) {
	priv, _ := crypto.GenerateKey()
	other, _ := crypto.GenerateKey()
	addr := crypto.PubkeyToAddress(priv.PublicKey)

	template, _ := BuildTemplate(addr.Hex(), "site.com")
	signed, _ := Sign(template, priv)
	tx, _ := Decode(signed)

	// 把 memo 里的地址换成别人的
	memo, err := tx.ExtractMemo()
	require.NoError(t, err)
	otherAddr := crypto.PubkeyToAddress(other.PublicKey)
	tampered := "actioncodes:v1:" + otherAddr.Hex() + ":" + memo[len(memo)-88:]
	_, err = VerifyMemo(tampered, "site.com")
	assert.Error(t, err)
}

func TestDecodeGarbage(t *testing.T) {
	_, err := Decode("!!!not base64!!!")
	assert.ErrorIs(t, err, ErrNotTransaction)

	_, err = Decode("aGVsbG8gd29ybGQ=") // "hello world"
	assert.ErrorIs(t, err, ErrNotTransaction)
}

func TestVerifyMemoMalformed(t *testing.T) {
	cases := []string{
		"",
		"actioncodes:v1",
		"wrong:prefix:0x8ba1f109551bD432803012645Ac136ddd64DBA72:c2ln",
		"actioncodes:v1:not-an-address:c2ln",
		"actioncodes:v1:0x8ba1f109551bD432803012645Ac136ddd64DBA72:%%%",
	}
	for _, memo := range cases {
		_, err := VerifyMemo(memo, "site.com")
		assert.ErrorIs(t, err, ErrBadMemo, "memo: %q", memo)
	}
}
