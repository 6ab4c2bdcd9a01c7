// Package mapping provides the in-memory pre/post question mapping table
// that pairs master questions with their counterparts in slave projects.
package mapping

import (
	"sort"
	"strings"
	"sync"
)

// Entry pairs a master question with the slave question answering it in a
// slave project.
type Entry struct {
	SlaveProjectID   string `json:"slave_project"`
	MasterQuestionID string `json:"master_question"`
	SlaveQuestionID  string `json:"slave_question"`
}

type key struct {
	project  string
	question string
}

// Table is a thread-safe mapping table. It implements questionnaire.Mapper.
// The zero value is an empty table ready to use.
type Table struct {
	mu   sync.RWMutex
	pre  map[key]string
	post map[key]string
}

// New creates a table holding entries.
func New(entries ...Entry) *Table {
	t := &Table{}
	for _, e := range entries {
		t.Add(e)
	}
	return t
}

// Add records e, replacing any earlier mapping of the same master question
// in the same slave project.
func (t *Table) Add(e Entry) {
	e = normalize(e)
	if e.SlaveProjectID == "" || e.MasterQuestionID == "" || e.SlaveQuestionID == "" {
		return
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.pre == nil {
		t.pre = make(map[key]string)
		t.post = make(map[key]string)
	}
	preKey := key{e.SlaveProjectID, e.MasterQuestionID}
	if old, ok := t.pre[preKey]; ok {
		// The old slave question may since answer another master question.
		oldKey := key{e.SlaveProjectID, old}
		if t.post[oldKey] == e.MasterQuestionID {
			delete(t.post, oldKey)
		}
	}
	t.pre[preKey] = e.SlaveQuestionID
	t.post[key{e.SlaveProjectID, e.SlaveQuestionID}] = e.MasterQuestionID
}

// PreQID returns the slave question mapped to masterQID in slaveProjectID,
// or "" when the question is unmapped.
func (t *Table) PreQID(slaveProjectID, masterQID string) string {
	if t == nil {
		return ""
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.pre[key{strings.TrimSpace(slaveProjectID), strings.TrimSpace(masterQID)}]
}

// PostQID returns the master question that slaveQID answers in
// slaveProjectID, or "".
func (t *Table) PostQID(slaveProjectID, slaveQID string) string {
	if t == nil {
		return ""
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.post[key{strings.TrimSpace(slaveProjectID), strings.TrimSpace(slaveQID)}]
}

// Chain follows masterQID through projects in order, each hop mapping the
// previous hop's question into the next project. It returns the question id
// reached in each project and stops at the first unmapped hop.
func (t *Table) Chain(masterQID string, projects ...string) []string {
	out := make([]string, 0, len(projects))
	qid := masterQID
	for _, p := range projects {
		qid = t.PreQID(p, qid)
		if qid == "" {
			break
		}
		out = append(out, qid)
	}
	return out
}

// Entries returns all mappings sorted by slave project then master question.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	t.mu.RLock()
	out := make([]Entry, 0, len(t.pre))
	for k, v := range t.pre {
		out = append(out, Entry{SlaveProjectID: k.project, MasterQuestionID: k.question, SlaveQuestionID: v})
	}
	t.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].SlaveProjectID != out[j].SlaveProjectID {
			return out[i].SlaveProjectID < out[j].SlaveProjectID
		}
		return out[i].MasterQuestionID < out[j].MasterQuestionID
	})
	return out
}

// Len returns the number of mappings.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.pre)
}

func normalize(e Entry) Entry {
	return Entry{
		SlaveProjectID:   strings.TrimSpace(e.SlaveProjectID),
		MasterQuestionID: strings.TrimSpace(e.MasterQuestionID),
		SlaveQuestionID:  strings.TrimSpace(e.SlaveQuestionID),
	}
}
