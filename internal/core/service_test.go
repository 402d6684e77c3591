package core

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/csvunion/internal/csvread"
	"github.com/JonMunkholm/csvunion/internal/source"
)

// mapSource serves text from a map and records which locators were fetched.
type mapSource struct {
	mu      sync.Mutex
	docs    map[string]string
	fetched []string
}

func (s *mapSource) Fetch(_ context.Context, locator string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fetched = append(s.fetched, locator)

	text, ok := s.docs[locator]
	if !ok {
		return "", &source.FetchError{Locator: locator, StatusCode: 404, Err: errors.New("not found")}
	}
	return text, nil
}

func newTestService(docs map[string]string) (*Service, *mapSource) {
	src := &mapSource{docs: docs}
	return NewService(src, csvread.Reader{}, ServiceConfig{MaxTables: 3}), src
}

func TestService_Merge(t *testing.T) {
	svc, src := newTestService(map[string]string{
		"mem://cases":  "State,Week (A05),Cases\nOhio,1,10\nIowa,2,\n",
		"mem://deaths": "State;Week;Deaths;flag_suppressed\nOhio;1;3;0\n",
	})

	res, err := svc.Merge(context.Background(), []TableSpec{
		{Name: "cases", Locator: "mem://cases"},
		{Name: "deaths", Locator: "mem://deaths"},
	})
	require.NoError(t, err)

	assert.NotEmpty(t, res.RunID)
	assert.ElementsMatch(t, []string{"mem://cases", "mem://deaths"}, src.fetched)
	require.Len(t, res.Tables, 2)
	assert.Equal(t, "cases", res.Tables[0].Name())
	assert.Equal(t, "deaths", res.Tables[1].Name())

	m := res.Merged
	assert.ElementsMatch(t, []string{"State", "Week", "Cases", "Deaths", "flag_suppressed"}, m.Fields)
	require.Len(t, m.Rows, 3)

	flag, _ := m.Rows[0].Get("flag_suppressed")
	assert.True(t, IntegerValue(0).Equal(flag))
	cases, _ := m.Rows[1].Get("Cases")
	assert.True(t, IntegerValue(0).Equal(cases))
	deaths, _ := m.Rows[2].Get("Deaths")
	assert.True(t, IntegerValue(3).Equal(deaths))
}

func TestService_MergeRequestErrors(t *testing.T) {
	svc, _ := newTestService(map[string]string{"mem://a": "x\n1\n"})
	ctx := context.Background()

	_, err := svc.Merge(ctx, nil)
	assert.ErrorIs(t, err, ErrNoTables)

	_, err = svc.Merge(ctx, []TableSpec{{"a", "mem://a"}, {"b", "mem://a"}, {"c", "mem://a"}, {"d", "mem://a"}})
	assert.ErrorIs(t, err, ErrTooManyTables)

	_, err = svc.Merge(ctx, []TableSpec{{"a", "mem://a"}, {"a", "mem://a"}})
	var dup *DuplicateTableError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "a", dup.Name)
}

func TestService_MergeFailsWholly(t *testing.T) {
	svc, _ := newTestService(map[string]string{
		"mem://ok":       "x\n1\n",
		"mem://conflict": "x\n5\n2020-01-01\n",
	})
	ctx := context.Background()

	_, err := svc.Merge(ctx, []TableSpec{{"ok", "mem://ok"}, {"missing", "mem://missing"}})
	var fe *source.FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, 404, fe.StatusCode)
	assert.Contains(t, err.Error(), `table "missing"`)

	_, err = svc.Merge(ctx, []TableSpec{{"ok", "mem://ok"}, {"bad", "mem://conflict"}})
	var conflict *TypeConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "bad", conflict.Table)
}

func TestService_MergeUploads(t *testing.T) {
	svc := NewService(nil, csvread.Reader{}, ServiceConfig{})

	res, err := svc.MergeUploads(context.Background(), []Upload{
		{Name: "a.csv", Text: "id,when\n1,2020-01-01\n"},
		{Name: "b.csv", Text: "id\tnote\n2\thello\n"},
	})
	require.NoError(t, err)
	assert.Len(t, res.Merged.Rows, 2)
	assert.Equal(t, TypeDate, res.Merged.Types["when"])
	assert.Equal(t, TypeText, res.Merged.Types["note"])

	_, err = svc.MergeUploads(context.Background(), []Upload{{Name: "empty.csv", Text: ""}})
	var mt *csvread.MalformedTableError
	assert.ErrorAs(t, err, &mt)
}

func TestService_LoadWithoutSource(t *testing.T) {
	svc := NewService(nil, csvread.Reader{}, ServiceConfig{})

	_, err := svc.Load(context.Background(), TableSpec{Name: "a", Locator: "mem://a"})
	assert.Error(t, err)
}

func TestService_BuildText(t *testing.T) {
	svc := NewService(nil, csvread.Reader{}, ServiceConfig{})

	tbl, err := svc.BuildText("t", "Name,Name,\na,b,c\n")
	require.NoError(t, err)
	assert.Equal(t, []string{"Name", "Name_2", "field_3"}, tbl.Fields())
}

func TestService_MergeCancelled(t *testing.T) {
	svc, _ := newTestService(map[string]string{"mem://a": "x\n1\n"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.MergeUploads(ctx, []Upload{{Name: "a", Text: "x\n1\n"}})
	assert.ErrorIs(t, err, context.Canceled)
}
