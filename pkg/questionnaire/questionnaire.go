package questionnaire

// Questionnaire is an ordered sequence of questions with lookup by id.
type Questionnaire struct {
	list  []*Question
	index map[string]int
}

// New creates a questionnaire from questions in definition order.
// A later question with an already used id shadows the earlier one in Get.
func New(questions ...*Question) *Questionnaire {
	qn := &Questionnaire{
		list:  make([]*Question, 0, len(questions)),
		index: make(map[string]int, len(questions)),
	}
	for _, q := range questions {
		qn.Add(q)
	}
	return qn
}

// Add appends a question.
func (qn *Questionnaire) Add(q *Question) {
	if q == nil {
		return
	}
	qn.index[q.ID] = len(qn.list)
	qn.list = append(qn.list, q)
}

// Get returns the question with the given id, or nil.
func (qn *Questionnaire) Get(id string) *Question {
	if qn == nil {
		return nil
	}
	i, ok := qn.index[id]
	if !ok {
		return nil
	}
	return qn.list[i]
}

// Questions returns the questions in definition order.
// The returned slice must not be modified.
func (qn *Questionnaire) Questions() []*Question {
	if qn == nil {
		return nil
	}
	return qn.list
}

// Len returns the number of questions.
func (qn *Questionnaire) Len() int {
	if qn == nil {
		return 0
	}
	return len(qn.list)
}
