package basic

import (
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/samber/mo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func newAccount() Account {
	nickname := "alice"
	return Account{
		ID:           uuid.MustParse("8a4f3c1e-2b7d-4e6a-9c1f-0d2e3f4a5b6c"),
		Email:        "alice@example.com",
		Nickname:     &nickname,
		PasswordHash: []byte("hash"),
		Settings:     datatypes.JSON(`{"theme":"dark"}`),
		CreatedAt:    time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC),
		DeletedAt:    gorm.DeletedAt{Time: time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), Valid: true},
	}
}

func TestAccount_RoundTrip(t *testing.T) {
	account := newAccount()

	partial, omitted := account.IntoPartialAccountWithOmitted()
	got := partial.ToAccount(omitted.ID, omitted.PasswordHash, omitted.DeletedAt, mo.None[*string](), mo.None[datatypes.JSON]())
	assert.Equal(t, account, got)

	patch, patchOmitted := account.IntoAccountPatchWithOmitted()
	got = patch.ToAccount(patchOmitted.ID, patchOmitted.CreatedAt, patchOmitted.DeletedAt,
		mo.None[string](), mo.None[*string](), mo.None[[]byte](), mo.None[datatypes.JSON]())
	assert.Equal(t, account, got)
}

func TestAccount_SplitCoversEveryField(t *testing.T) {
	account := newAccount()
	partial, omitted := SplitPartialAccount(account)

	assert.Equal(t, NewPartialAccount(account), partial)
	assert.Equal(t, account.ID, omitted.ID)
	assert.Equal(t, account.PasswordHash, omitted.PasswordHash)
	assert.Equal(t, account.DeletedAt, omitted.DeletedAt)
	assert.Equal(t, account.Email, partial.Email)
	assert.Equal(t, mo.Some(account.Nickname), partial.Nickname)
	assert.Equal(t, mo.Some(account.Settings), partial.Settings)
	assert.Equal(t, account.CreatedAt, partial.CreatedAt)
}

func TestAccount_OptionalFallback(t *testing.T) {
	account := newAccount()
	partial, omitted := account.IntoPartialAccountWithOmitted()
	fallbackName := "bob"

	// 部分类型中的值优先
	got := partial.ToAccount(omitted.ID, omitted.PasswordHash, omitted.DeletedAt, mo.Some(&fallbackName), mo.None[datatypes.JSON]())
	assert.Equal(t, "alice", *got.Nickname)

	// 值为空时取备用值
	partial.Nickname = mo.None[*string]()
	got = partial.ToAccount(omitted.ID, omitted.PasswordHash, omitted.DeletedAt, mo.Some(&fallbackName), mo.None[datatypes.JSON]())
	assert.Equal(t, "bob", *got.Nickname)

	// 二者都为空时为零值
	partial.Settings = mo.None[datatypes.JSON]()
	got = partial.ToAccount(omitted.ID, omitted.PasswordHash, omitted.DeletedAt, mo.None[*string](), mo.None[datatypes.JSON]())
	assert.Nil(t, got.Nickname)
	assert.Nil(t, got.Settings)
}

func TestAccountPatch_FromJSON(t *testing.T) {
	current := newAccount()

	var patch AccountPatch
	require.NoError(t, sonic.ConfigStd.Unmarshal([]byte(`{"email":"new@example.com"}`), &patch))
	assert.True(t, patch.Email.IsPresent())
	assert.True(t, patch.Nickname.IsAbsent())

	// 未出现在请求中的字段沿用当前值
	existing := NewAccountPatch(current)
	updated := patch.ToAccount(current.ID, current.CreatedAt, current.DeletedAt,
		existing.Email, existing.Nickname, existing.PasswordHash, existing.Settings)

	assert.Equal(t, "new@example.com", updated.Email)
	assert.Equal(t, current.Nickname, updated.Nickname)
	assert.Equal(t, current.PasswordHash, updated.PasswordHash)
	assert.Equal(t, current.ID, updated.ID)
}

func TestCar_UnexportedFields(t *testing.T) {
	mileage := 42000
	car := Car{vin: "1HGCM82633A004352", model: "Accord", mileage: &mileage}

	partial, omitted := car.IntoPartialCarWithOmitted()
	assert.Equal(t, "Accord", partial.Model)
	assert.Equal(t, "1HGCM82633A004352", omitted.Vin)
	assert.Equal(t, car, partial.ToCar(omitted.Vin, mo.None[*int]()))

	empty := PartialCar{Model: "Civic"}
	rebuilt := empty.ToCar("VIN", mo.None[*int]())
	assert.Nil(t, rebuilt.mileage)
	assert.Equal(t, "Civic", rebuilt.model)
}
