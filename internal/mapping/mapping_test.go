package mapping

import (
	"sync"
	"testing"

	"github.com/leapstack-labs/reportcols/pkg/questionnaire"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var _ questionnaire.Mapper = (*Table)(nil)

const (
	slaveA = "6ca3871a-2411-4c31-923a-9184ec1d1892"
	slaveB = "0ab7516e-f492-4bc6-9bf4-56fb106e1ab8"
)

func TestTable_PreAndPost(t *testing.T) {
	tbl := New(
		Entry{SlaveProjectID: slaveA, MasterQuestionID: "Q3", SlaveQuestionID: "Q5"},
		Entry{SlaveProjectID: slaveB, MasterQuestionID: "Q3", SlaveQuestionID: "Q9"},
	)

	assert.Equal(t, "Q5", tbl.PreQID(slaveA, "Q3"))
	assert.Equal(t, "Q9", tbl.PreQID(slaveB, "Q3"))
	assert.Empty(t, tbl.PreQID(slaveA, "Q4"))
	assert.Equal(t, "Q3", tbl.PostQID(slaveA, "Q5"))
	assert.Empty(t, tbl.PostQID(slaveA, "Q9"))
	assert.Equal(t, 2, tbl.Len())
}

func TestTable_AddReplaces(t *testing.T) {
	tbl := New(Entry{SlaveProjectID: slaveA, MasterQuestionID: "Q3", SlaveQuestionID: "Q5"})
	tbl.Add(Entry{SlaveProjectID: slaveA, MasterQuestionID: "Q3", SlaveQuestionID: "Q6"})

	assert.Equal(t, "Q6", tbl.PreQID(slaveA, "Q3"))
	assert.Empty(t, tbl.PostQID(slaveA, "Q5"), "stale reverse mapping must be dropped")
	assert.Equal(t, 1, tbl.Len())
}

func TestTable_IgnoresIncompleteEntries(t *testing.T) {
	tbl := New(
		Entry{SlaveProjectID: slaveA, MasterQuestionID: "Q3"},
		Entry{SlaveProjectID: " ", MasterQuestionID: "Q3", SlaveQuestionID: "Q5"},
	)
	assert.Zero(t, tbl.Len())
}

func TestTable_TrimsIdentifiers(t *testing.T) {
	tbl := New(Entry{SlaveProjectID: " " + slaveA, MasterQuestionID: "Q3 ", SlaveQuestionID: " Q5"})
	assert.Equal(t, "Q5", tbl.PreQID(slaveA, " Q3"))
}

func TestTable_Chain(t *testing.T) {
	tbl := New(
		Entry{SlaveProjectID: slaveA, MasterQuestionID: "Q1", SlaveQuestionID: "Q2"},
		Entry{SlaveProjectID: slaveB, MasterQuestionID: "Q2", SlaveQuestionID: "Q7"},
	)

	assert.Equal(t, []string{"Q2", "Q7"}, tbl.Chain("Q1", slaveA, slaveB))
	assert.Equal(t, []string{"Q2"}, tbl.Chain("Q1", slaveA, "missing", slaveB))
	assert.Empty(t, tbl.Chain("Q1", slaveB))
}

func TestTable_EntriesSorted(t *testing.T) {
	tbl := New(
		Entry{SlaveProjectID: slaveB, MasterQuestionID: "Q1", SlaveQuestionID: "X"},
		Entry{SlaveProjectID: slaveA, MasterQuestionID: "Q2", SlaveQuestionID: "Y"},
		Entry{SlaveProjectID: slaveA, MasterQuestionID: "Q1", SlaveQuestionID: "Z"},
	)

	got := tbl.Entries()
	require.Len(t, got, 3)
	// slaveB (0ab...) sorts before slaveA (6ca3...).
	assert.Equal(t, Entry{slaveB, "Q1", "X"}, got[0])
	assert.Equal(t, Entry{slaveA, "Q1", "Z"}, got[1])
	assert.Equal(t, Entry{slaveA, "Q2", "Y"}, got[2])
}

func TestTable_RemapKeepsReverseOfNewOwner(t *testing.T) {
	tbl := New(
		Entry{SlaveProjectID: slaveA, MasterQuestionID: "Q1", SlaveQuestionID: "S1"},
		Entry{SlaveProjectID: slaveA, MasterQuestionID: "Q2", SlaveQuestionID: "S1"},
		Entry{SlaveProjectID: slaveA, MasterQuestionID: "Q1", SlaveQuestionID: "S9"},
	)

	assert.Equal(t, "S1", tbl.PreQID(slaveA, "Q2"))
	assert.Equal(t, "Q2", tbl.PostQID(slaveA, "S1"))
	assert.Equal(t, "Q1", tbl.PostQID(slaveA, "S9"))

	// Remapping the current owner drops its stale reverse entry.
	tbl.Add(Entry{SlaveProjectID: slaveA, MasterQuestionID: "Q2", SlaveQuestionID: "S4"})
	assert.Empty(t, tbl.PostQID(slaveA, "S1"))
	assert.Equal(t, "Q2", tbl.PostQID(slaveA, "S4"))
}

func TestTable_NilAndZero(t *testing.T) {
	var nilTable *Table
	assert.Empty(t, nilTable.PreQID(slaveA, "Q1"))
	assert.Empty(t, nilTable.PostQID(slaveA, "Q1"))
	assert.Nil(t, nilTable.Entries())
	assert.Zero(t, nilTable.Len())

	var zero Table
	zero.Add(Entry{SlaveProjectID: slaveA, MasterQuestionID: "Q1", SlaveQuestionID: "Q2"})
	assert.Equal(t, "Q2", zero.PreQID(slaveA, "Q1"))
}

func TestTable_ConcurrentAccess(t *testing.T) {
	tbl := New()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			tbl.Add(Entry{SlaveProjectID: slaveA, MasterQuestionID: "Q1", SlaveQuestionID: "Q2"})
		}()
		go func() {
			defer wg.Done()
			_ = tbl.PreQID(slaveA, "Q1")
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, tbl.Len())
}
