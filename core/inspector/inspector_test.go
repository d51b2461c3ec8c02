package inspector_test

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/anoideaopen/inspector/core/inspector"
	"github.com/anoideaopen/inspector/core/reflectx"
	"github.com/anoideaopen/inspector/core/typeinfo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

const marker typeinfo.Marker = "inspect"

type Villager struct {
	name        string `inspect:""`
	description string
}

func newVillager(name, description string) *Villager {
	return &Villager{name: name, description: description}
}

type Greeter interface {
	Greet() string
}

type Traveller interface {
	Greet() string
	Travel(to string)
}

type Host struct {
	Guests []string `inspect:"guests"`
	Rooms  int      `inspect:"rooms" json:"rooms"`
	Owner  string   `json:"owner"`
	_      int      `inspect:""`
	_      string   `inspect:""`
}

func (Host) Greet() string { return "hello" }

func (Host) Farewell() string { return "bye" }

func (*Host) Travel(string) {}

var errClosed = errors.New("closed")

type Shop struct {
	Owner string
	Items int
}

func newShopFromAny(owner any) *Shop {
	return &Shop{Owner: "any"}
}

func NewShop(owner string) *Shop {
	return &Shop{Owner: owner}
}

func NewShopWithItems(owner string, items int) (*Shop, error) {
	if items < 0 {
		return nil, errClosed
	}
	return &Shop{Owner: owner, Items: items}, nil
}

func NewBrokenShop(owner string, items int, _ bool) *Shop {
	panic("broken shop")
}

func (s *Shop) Greet() string { return "welcome " + s.Owner }

type Ledger struct {
	Owner   string
	Balance int64
	Opened  time.Time
}

func NewLedger(owner string, balance int64) *Ledger {
	return &Ledger{Owner: owner, Balance: balance}
}

func NewLedgerOpened(owner string, opened time.Time) *Ledger {
	return &Ledger{Owner: owner, Opened: opened}
}

func TestAnnotatedFields(t *testing.T) {
	tests := []struct {
		name     string
		desc     typeinfo.Descriptor
		marker   typeinfo.Marker
		expected []string
	}{
		{
			name:     "annotated and plain field",
			desc:     reflectx.MustDescribe(reflect.TypeFor[Villager]()),
			marker:   marker,
			expected: []string{"name"},
		},
		{
			name:     "blank fields are reported once",
			desc:     reflectx.MustDescribe(reflect.TypeFor[Host]()),
			marker:   marker,
			expected: []string{"Guests", "Rooms", "_"},
		},
		{
			name:     "other marker",
			desc:     reflectx.MustDescribe(reflect.TypeFor[Host]()),
			marker:   "json",
			expected: []string{"Rooms", "Owner"},
		},
		{
			name:     "no annotated fields",
			desc:     reflectx.MustDescribe(reflect.TypeFor[Shop]()),
			marker:   marker,
			expected: []string{},
		},
		{
			name:     "not a struct",
			desc:     reflectx.MustDescribe(reflect.TypeFor[Greeter]()),
			marker:   marker,
			expected: []string{},
		},
		{
			name: "duplicate names from a static table",
			desc: &typeinfo.Static{
				TypeName: "village.Hut",
				Fields: []typeinfo.Field{
					{Name: "roof", Tag: `inspect:""`},
					{Name: "door"},
					{Name: "roof", Tag: `inspect:"again"`},
				},
			},
			marker:   marker,
			expected: []string{"roof"},
		},
		{
			name:     "nil descriptor",
			desc:     nil,
			marker:   marker,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, inspector.AnnotatedFields(tt.desc, tt.marker))
		})
	}
}

func TestAllDeclaredMethods(t *testing.T) {
	tests := []struct {
		name     string
		desc     typeinfo.Descriptor
		expected []string
	}{
		{
			name: "method names are case sensitive",
			desc: reflectx.MustDescribe(
				reflect.TypeFor[Host](),
				reflectx.WithDeclaredMethods("greet", "farewell"),
				reflectx.WithInterfaces(reflect.TypeFor[Greeter]()),
			),
			expected: []string{"Greet", "farewell", "greet"},
		},
		{
			name: "greet and farewell",
			desc: reflectx.MustDescribe(
				reflect.TypeFor[Host](),
				reflectx.WithDeclaredMethods("Greet", "Farewell"),
				reflectx.WithInterfaces(reflect.TypeFor[Greeter]()),
			),
			expected: []string{"Farewell", "Greet"},
		},
		{
			name: "several interfaces",
			desc: reflectx.MustDescribe(
				reflect.TypeFor[Host](),
				reflectx.WithInterfaces(reflect.TypeFor[Greeter](), reflect.TypeFor[Traveller]()),
			),
			expected: []string{"Farewell", "Greet", "Travel"},
		},
		{
			name: "interface adds undeclared name",
			desc: &typeinfo.Static{
				TypeName:   "village.Inn",
				Methods:    []typeinfo.Method{{Name: "Rent"}},
				Implements: []typeinfo.Descriptor{&typeinfo.Static{Methods: []typeinfo.Method{{Name: "Greet"}}}},
			},
			expected: []string{"Greet", "Rent"},
		},
		{
			name:     "no methods",
			desc:     reflectx.MustDescribe(reflect.TypeFor[Villager]()),
			expected: []string{},
		},
		{
			name:     "nil descriptor",
			desc:     nil,
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.expected, inspector.AllDeclaredMethods(tt.desc))
		})
	}
}

func TestCreateInstanceUnexportedConstructor(t *testing.T) {
	d := reflectx.MustDescribe(reflect.TypeFor[Villager](), reflectx.WithConstructors(newVillager))
	require.False(t, d.DeclaredConstructors()[0].Accessible())

	v, err := inspector.CreateInstance[*Villager](d, "a", "b")
	require.NoError(t, err)
	require.NotNil(t, v)
	require.Equal(t, &Villager{name: "a", description: "b"}, v)
	require.True(t, d.DeclaredConstructors()[0].Accessible())

	_, err = inspector.CreateInstance[*Villager](d, "a")
	require.ErrorIs(t, err, inspector.ErrConstructorNotFound)

	_, err = inspector.CreateInstance[*Villager](d, "a", "b", "c")
	require.ErrorIs(t, err, inspector.ErrConstructorNotFound)

	_, err = inspector.CreateInstance[*Villager](d)
	require.ErrorIs(t, err, inspector.ErrConstructorNotFound)
}

func TestCreateInstance(t *testing.T) {
	d := reflectx.MustDescribe(
		reflect.TypeFor[Shop](),
		reflectx.WithConstructors(NewShop, NewShopWithItems, NewBrokenShop),
	)

	tests := []struct {
		name     string
		args     []any
		expected *Shop
		wantErr  error
	}{
		{name: "one argument", args: []any{"bob"}, expected: &Shop{Owner: "bob"}},
		{name: "two arguments", args: []any{"bob", 3}, expected: &Shop{Owner: "bob", Items: 3}},
		{name: "no arguments", args: nil, wantErr: inspector.ErrConstructorNotFound},
		{name: "incompatible types", args: []any{3, "bob"}, wantErr: inspector.ErrConstructorNotFound},
		{name: "nil argument", args: []any{nil}, wantErr: inspector.ErrConstructorNotFound},
		{name: "untyped conversion is not applied", args: []any{"bob", int64(3)}, wantErr: inspector.ErrConstructorNotFound},
		{name: "constructor error", args: []any{"bob", -1}, wantErr: errClosed},
		{name: "constructor panic", args: []any{"bob", 1, true}, wantErr: typeinfo.ErrConstructorPanicked},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := inspector.CreateInstance[*Shop](d, tt.args...)
			if tt.wantErr != nil {
				require.ErrorIs(t, err, tt.wantErr)
				require.Nil(t, v)
				return
			}

			require.NoError(t, err)
			require.Equal(t, tt.expected, v)
		})
	}
}

func TestCreateInstanceDistinguishesFailures(t *testing.T) {
	d := reflectx.MustDescribe(reflect.TypeFor[Shop](), reflectx.WithConstructors(NewShopWithItems))

	_, err := inspector.CreateInstance[*Shop](d, "bob", -1)
	require.ErrorIs(t, err, inspector.ErrInvocationFailed)
	require.NotErrorIs(t, err, inspector.ErrConstructorNotFound)

	var invErr *inspector.InvocationError
	require.ErrorAs(t, err, &invErr)
	require.Equal(t, "inspector_test.Shop", invErr.Type)
	require.Equal(t, "NewShopWithItems", invErr.Constructor)
	require.ErrorIs(t, invErr.Err, errClosed)

	_, err = inspector.CreateInstance[*Shop](d, "bob")
	require.ErrorIs(t, err, inspector.ErrConstructorNotFound)
	require.NotErrorIs(t, err, inspector.ErrInvocationFailed)
	require.ErrorContains(t, err, "no suitable constructor located")
	require.ErrorContains(t, err, "inspector_test.Shop(string)")
}

func TestCreateInstanceFirstFit(t *testing.T) {
	d := reflectx.MustDescribe(
		reflect.TypeFor[Shop](),
		reflectx.WithConstructors(newShopFromAny, NewShop),
	)

	v, err := inspector.CreateInstance[*Shop](d, "bob")
	require.NoError(t, err)
	require.Equal(t, "any", v.Owner)

	d = reflectx.MustDescribe(
		reflect.TypeFor[Shop](),
		reflectx.WithConstructors(NewShop, newShopFromAny),
	)

	v, err = inspector.CreateInstance[*Shop](d, "bob")
	require.NoError(t, err)
	require.Equal(t, "bob", v.Owner)
}

func TestCreateInstanceStaticType(t *testing.T) {
	d := reflectx.MustDescribe(reflect.TypeFor[Shop](), reflectx.WithConstructors(NewShop))

	g, err := inspector.CreateInstance[Greeter](d, "bob")
	require.NoError(t, err)
	require.Equal(t, "welcome bob", g.Greet())

	_, err = inspector.CreateInstance[Shop](d, "bob")
	require.ErrorIs(t, err, inspector.ErrInvocationFailed)
	require.ErrorIs(t, err, inspector.ErrIncompatibleResult)

	v, err := inspector.NewInstance(d, "bob")
	require.NoError(t, err)
	require.IsType(t, &Shop{}, v)
}

func TestCreateInstanceDefaultConstructor(t *testing.T) {
	d := reflectx.MustDescribe(reflect.TypeFor[Ledger]())

	v, err := inspector.CreateInstance[*Ledger](d)
	require.NoError(t, err)
	require.Equal(t, &Ledger{}, v)
}

func TestCreateInstanceNilDescriptor(t *testing.T) {
	_, err := inspector.CreateInstance[*Shop](nil)
	require.ErrorIs(t, err, inspector.ErrConstructorNotFound)

	_, err = inspector.CreateInstanceFromText[*Shop](nil)
	require.ErrorIs(t, err, inspector.ErrConstructorNotFound)
}

func TestCreateInstanceFromText(t *testing.T) {
	d := reflectx.MustDescribe(
		reflect.TypeFor[Ledger](),
		reflectx.WithConstructors(NewLedger, NewLedgerOpened),
	)

	v, err := inspector.CreateInstanceFromText[*Ledger](d, "alice", "42")
	require.NoError(t, err)
	require.Equal(t, &Ledger{Owner: "alice", Balance: 42}, v)

	opened := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	v, err = inspector.CreateInstanceFromText[*Ledger](d, "alice", opened.Format(time.RFC3339))
	require.NoError(t, err)
	require.True(t, opened.Equal(v.Opened))
	require.Zero(t, v.Balance)

	_, err = inspector.CreateInstanceFromText[*Ledger](d, "alice")
	require.ErrorIs(t, err, inspector.ErrConstructorNotFound)

	_, err = inspector.CreateInstanceFromText[*Ledger](d, "alice", "not a number or a date")
	require.ErrorIs(t, err, inspector.ErrConstructorNotFound)
}

func TestCreateInstanceConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	d := reflectx.MustDescribe(reflect.TypeFor[Villager](), reflectx.WithConstructors(newVillager))

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := inspector.CreateInstance[*Villager](d, "a", "b")
			assert.NoError(t, err)
			assert.NotNil(t, v)
		}()
	}
	wg.Wait()
}
