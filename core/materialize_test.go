package core

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newPeopleConn() *fakeConn {
	return &fakeConn{
		cols: []string{"id", "name", "city"},
		rows: [][]any{
			{int64(1), "bob", "berlin"},
			{int64(2), "alice", "oslo"},
			{int64(3), "carol", "berlin"},
		},
	}
}

func TestExecuteDictionaries(t *testing.T) {
	conn := newPeopleConn()
	e := newTestExecutor(conn)
	require.NoError(t, e.CreateTextCommand("select id, name, city from person"))

	got, err := e.ExecuteDictionaries(context.Background(), nil)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, map[string]any{"id": int64(1), "name": "bob", "city": "berlin"}, got[0])
	assert.Equal(t, "oslo", got[1]["city"])
}

func TestExecuteDictionariesRename(t *testing.T) {
	conn := newPeopleConn()
	e := newTestExecutor(conn)
	require.NoError(t, e.CreateTextCommand("select id, name, city from person"))

	got, err := e.ExecuteDictionaries(context.Background(), strings.ToUpper)
	require.NoError(t, err)
	assert.Equal(t, "bob", got[0]["NAME"])
	_, ok := got[0]["name"]
	assert.False(t, ok)
}

func TestExecuteAndTransform(t *testing.T) {
	conn := newPeopleConn()
	e := newTestExecutor(conn)
	require.NoError(t, e.CreateTextCommand("select id, name, city from person"))

	got, err := ExecuteAndTransform(context.Background(), e, func(r Row) (string, error) {
		name, _ := r.Lookup("name")
		city, _ := r.Lookup("city")
		return name.(string) + "@" + city.(string), nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"bob@berlin", "alice@oslo", "carol@berlin"}, got)
}

func TestTransformErrorBypassesHandlers(t *testing.T) {
	conn := newPeopleConn()
	e := newTestExecutor(conn)
	handled := 0
	e.OnError(func(_ *Executor, _ error) { handled++ })
	require.NoError(t, e.CreateTextCommand("select id, name, city from person"))

	convErr := errors.New("bad row shape")
	_, err := ExecuteAndTransform(context.Background(), e, func(r Row) (string, error) {
		return "", convErr
	})

	// Converter failures are caller bugs, not database faults: they surface
	// past the suppress policy, unwrapped.
	require.ErrorIs(t, err, convErr)
	assert.NotErrorIs(t, err, ErrExecution)
	assert.Equal(t, 0, handled)
	assert.Equal(t, 1, conn.lastRows.closed)
}

func TestExecuteAndAutoMap(t *testing.T) {
	type person struct {
		ID   int64
		Name string
		City string `jsql:"city"`
	}
	conn := newPeopleConn()
	e := newTestExecutor(conn)
	require.NoError(t, e.CreateTextCommand("select id, name, city from person"))

	got, err := ExecuteAndAutoMap[person](context.Background(), e)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, person{ID: 2, Name: "alice", City: "oslo"}, got[1])
}

func TestExecuteArray(t *testing.T) {
	conn := newPeopleConn()
	e := newTestExecutor(conn)
	require.NoError(t, e.CreateTextCommand("select id, name, city from person"))

	t.Run("named column", func(t *testing.T) {
		got, err := ExecuteArray[string](context.Background(), e, "name")
		require.NoError(t, err)
		assert.Equal(t, []string{"bob", "alice", "carol"}, got)
	})

	t.Run("first column by default", func(t *testing.T) {
		got, err := ExecuteArray[int64](context.Background(), e, "")
		require.NoError(t, err)
		assert.Equal(t, []int64{1, 2, 3}, got)
	})

	t.Run("unknown column", func(t *testing.T) {
		_, err := ExecuteArray[string](context.Background(), e, "nope")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown column nope")
	})
}

func TestExecuteArrayStringOverIntegerColumn(t *testing.T) {
	conn := &fakeConn{cols: []string{"code"}, rows: [][]any{{int64(65)}, {int64(1024)}}}
	e := newTestExecutor(conn)
	require.NoError(t, e.CreateTextCommand("select code from product"))

	got, err := ExecuteArray[string](context.Background(), e, "code")
	require.NoError(t, err)
	assert.Equal(t, []string{"65", "1024"}, got, "integer columns render as decimals, not runes")
}

func TestExecuteVerticalDictionaryStringKeyOverIntegerColumn(t *testing.T) {
	conn := newPeopleConn()
	e := newTestExecutor(conn)
	require.NoError(t, e.CreateTextCommand("select id, name, city from person"))

	got, err := ExecuteVerticalDictionary[string, string](context.Background(), e, "id", "name")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"1": "bob", "2": "alice", "3": "carol"}, got)
}

func TestExecuteAndAutoMapStringFieldOverIntegerColumn(t *testing.T) {
	type product struct {
		Code string
	}
	conn := &fakeConn{cols: []string{"code"}, rows: [][]any{{int64(65)}}}
	e := newTestExecutor(conn)
	require.NoError(t, e.CreateTextCommand("select code from product"))

	got, err := ExecuteAndAutoMap[product](context.Background(), e)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "65", got[0].Code)
}

func TestExecuteVerticalDictionary(t *testing.T) {
	conn := newPeopleConn()
	e := newTestExecutor(conn)
	require.NoError(t, e.CreateTextCommand("select id, name, city from person"))

	got, err := ExecuteVerticalDictionary[int64, string](context.Background(), e, "id", "name")
	require.NoError(t, err)
	assert.Equal(t, map[int64]string{1: "bob", 2: "alice", 3: "carol"}, got)
}

func TestExecuteVerticalDictionaryOrdinal(t *testing.T) {
	conn := newPeopleConn()
	e := newTestExecutor(conn)
	require.NoError(t, e.CreateTextCommand("select id, name, city from person"))

	got, err := ExecuteVerticalDictionaryOrdinal[string, string](context.Background(), e, 1, 2)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"bob": "berlin", "alice": "oslo", "carol": "berlin"}, got)

	_, err = ExecuteVerticalDictionaryOrdinal[string, string](context.Background(), e, 1, 9)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "out of range")
}

func TestExecuteVerticalDictionaryDuplicateKey(t *testing.T) {
	conn := newPeopleConn()
	e := newTestExecutor(conn)
	handled := 0
	e.OnError(func(_ *Executor, _ error) { handled++ })
	require.NoError(t, e.CreateTextCommand("select id, name, city from person"))

	// city repeats: berlin appears twice. The duplicate surfaces even with
	// error handlers registered.
	_, err := ExecuteVerticalDictionary[string, string](context.Background(), e, "city", "name")
	require.ErrorIs(t, err, ErrDuplicateKey)
	assert.Equal(t, 0, handled)
	assert.Equal(t, 1, conn.lastRows.closed)
}

func TestExecuteVerticalLookup(t *testing.T) {
	conn := newPeopleConn()
	e := newTestExecutor(conn)
	require.NoError(t, e.CreateTextCommand("select id, name, city from person"))

	got, err := ExecuteVerticalLookup[string, string](context.Background(), e, "city", "name")
	require.NoError(t, err)
	assert.Equal(t, map[string][]string{
		"berlin": {"bob", "carol"},
		"oslo":   {"alice"},
	}, got)
}

func TestMaterializeEmptyResultSet(t *testing.T) {
	conn := &fakeConn{cols: []string{"id", "name"}}
	e := newTestExecutor(conn)
	require.NoError(t, e.CreateTextCommand("select id, name from person where 1 = 0"))

	dicts, err := e.ExecuteDictionaries(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, dicts)

	arr, err := ExecuteArray[string](context.Background(), e, "name")
	require.NoError(t, err)
	assert.Empty(t, arr)

	dict, err := ExecuteVerticalDictionary[int64, string](context.Background(), e, "id", "name")
	require.NoError(t, err)
	assert.Empty(t, dict)
}

func TestMaterializeIterationError(t *testing.T) {
	conn := newPeopleConn()
	conn.iterErr = errors.New("connection reset")
	e := newTestExecutor(conn)
	require.NoError(t, e.CreateTextCommand("select id, name, city from person"))

	_, err := e.ExecuteDictionaries(context.Background(), nil)
	require.ErrorIs(t, err, ErrExecution)
	assert.Contains(t, err.Error(), "connection reset")
}
