package store

import (
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"
)

// Table and column names.
const (
	tableLearners     = "learners"
	tableWordSets     = "word_sets"
	tableWords        = "words"
	tableItemStates   = "learner_item_states"
	tableReviewEvents = "review_events"
	tableStreaks      = "daily_streaks"
	tableQuestions    = "questions"
	tableOptions      = "question_options"
	tableTags         = "question_tags"
	tableAttempts     = "attempts"
	tableRequests     = "assignment_requests"
	tableItems        = "assignment_items"
	tableSequence     = "global_sequence"
)

var (
	learnersColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 64},
		{Name: "name", Type: field.TypeString},
		{Name: "created_at", Type: field.TypeTime},
	}
	learnersTable = &schema.Table{
		Name:       tableLearners,
		Columns:    learnersColumns,
		PrimaryKey: []*schema.Column{learnersColumns[0]},
	}

	wordSetsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 64},
		{Name: "name", Type: field.TypeString, Unique: true},
		{Name: "created_at", Type: field.TypeTime},
	}
	wordSetsTable = &schema.Table{
		Name:       tableWordSets,
		Columns:    wordSetsColumns,
		PrimaryKey: []*schema.Column{wordSetsColumns[0]},
	}

	wordsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 64},
		{Name: "set_id", Type: field.TypeString, Size: 64},
		{Name: "term", Type: field.TypeString},
		{Name: "translation", Type: field.TypeString},
		{Name: "example", Type: field.TypeString, Default: ""},
		{Name: "position", Type: field.TypeInt},
	}
	wordsTable = &schema.Table{
		Name:       tableWords,
		Columns:    wordsColumns,
		PrimaryKey: []*schema.Column{wordsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "words_word_sets_words",
			Columns:    []*schema.Column{wordsColumns[1]},
			RefTable:   wordSetsTable,
			RefColumns: []*schema.Column{wordSetsColumns[0]},
			OnDelete:   schema.Cascade,
		}},
		Indexes: []*schema.Index{
			{Name: "word_set_term", Unique: true, Columns: []*schema.Column{wordsColumns[1], wordsColumns[2]}},
			{Name: "word_set_position", Columns: []*schema.Column{wordsColumns[1], wordsColumns[5]}},
		},
	}

	itemStatesColumns = []*schema.Column{
		{Name: "learner_id", Type: field.TypeString, Size: 64},
		{Name: "item_id", Type: field.TypeString, Size: 64},
		{Name: "ease_factor", Type: field.TypeFloat64},
		{Name: "interval_days", Type: field.TypeInt},
		{Name: "repetition", Type: field.TypeInt},
		{Name: "next_due", Type: field.TypeString, Size: 10, Nullable: true},
		{Name: "last_reviewed_at", Type: field.TypeTime, Nullable: true},
		{Name: "mastery", Type: field.TypeString, Size: 16},
		{Name: "total_reviews", Type: field.TypeInt},
		{Name: "correct_count", Type: field.TypeInt},
		{Name: "version", Type: field.TypeInt},
		{Name: "updated_at", Type: field.TypeTime},
	}
	itemStatesTable = &schema.Table{
		Name:       tableItemStates,
		Columns:    itemStatesColumns,
		PrimaryKey: []*schema.Column{itemStatesColumns[0], itemStatesColumns[1]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "learner_item_states_learners_states",
			Columns:    []*schema.Column{itemStatesColumns[0]},
			RefTable:   learnersTable,
			RefColumns: []*schema.Column{learnersColumns[0]},
			OnDelete:   schema.Cascade,
		}},
		Indexes: []*schema.Index{
			{Name: "itemstate_learner_next_due", Columns: []*schema.Column{itemStatesColumns[0], itemStatesColumns[5]}},
			{Name: "itemstate_learner_mastery", Columns: []*schema.Column{itemStatesColumns[0], itemStatesColumns[7]}},
		},
	}

	reviewEventsColumns = []*schema.Column{
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "learner_id", Type: field.TypeString, Size: 64},
		{Name: "item_id", Type: field.TypeString, Size: 64},
		{Name: "session_id", Type: field.TypeString, Size: 64, Nullable: true},
		{Name: "quality", Type: field.TypeInt},
		{Name: "response_time_ms", Type: field.TypeInt},
		{Name: "mastery_from", Type: field.TypeString, Size: 16},
		{Name: "mastery_to", Type: field.TypeString, Size: 16},
		{Name: "review_day", Type: field.TypeString, Size: 10},
		{Name: "reviewed_at", Type: field.TypeTime},
	}
	reviewEventsTable = &schema.Table{
		Name:       tableReviewEvents,
		Columns:    reviewEventsColumns,
		PrimaryKey: []*schema.Column{reviewEventsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "reviewevent_learner_day", Columns: []*schema.Column{reviewEventsColumns[1], reviewEventsColumns[8]}},
		},
	}

	streaksColumns = []*schema.Column{
		{Name: "learner_id", Type: field.TypeString, Size: 64},
		{Name: "current_days", Type: field.TypeInt},
		{Name: "longest_days", Type: field.TypeInt},
		{Name: "last_study_date", Type: field.TypeString, Size: 10, Nullable: true},
	}
	streaksTable = &schema.Table{
		Name:       tableStreaks,
		Columns:    streaksColumns,
		PrimaryKey: []*schema.Column{streaksColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "daily_streaks_learners_streak",
			Columns:    []*schema.Column{streaksColumns[0]},
			RefTable:   learnersTable,
			RefColumns: []*schema.Column{learnersColumns[0]},
			OnDelete:   schema.Cascade,
		}},
	}

	questionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 64},
		{Name: "stem", Type: field.TypeString, Size: 4096},
		{Name: "difficulty", Type: field.TypeString, Size: 16},
		{Name: "created_at", Type: field.TypeTime},
	}
	questionsTable = &schema.Table{
		Name:       tableQuestions,
		Columns:    questionsColumns,
		PrimaryKey: []*schema.Column{questionsColumns[0]},
	}

	optionsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 64},
		{Name: "question_id", Type: field.TypeString, Size: 64},
		{Name: "letter", Type: field.TypeString, Size: 4},
		{Name: "text", Type: field.TypeString, Size: 2048},
		{Name: "correct", Type: field.TypeBool},
		{Name: "trap_code", Type: field.TypeString, Size: 64, Nullable: true},
	}
	optionsTable = &schema.Table{
		Name:       tableOptions,
		Columns:    optionsColumns,
		PrimaryKey: []*schema.Column{optionsColumns[0]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "question_options_questions_options",
			Columns:    []*schema.Column{optionsColumns[1]},
			RefTable:   questionsTable,
			RefColumns: []*schema.Column{questionsColumns[0]},
			OnDelete:   schema.Cascade,
		}},
		Indexes: []*schema.Index{
			{Name: "option_question", Columns: []*schema.Column{optionsColumns[1]}},
			{Name: "option_trap", Columns: []*schema.Column{optionsColumns[5]}},
		},
	}

	tagsColumns = []*schema.Column{
		{Name: "question_id", Type: field.TypeString, Size: 64},
		{Name: "tag", Type: field.TypeString, Size: 64},
	}
	tagsTable = &schema.Table{
		Name:       tableTags,
		Columns:    tagsColumns,
		PrimaryKey: []*schema.Column{tagsColumns[0], tagsColumns[1]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "question_tags_questions_tags",
			Columns:    []*schema.Column{tagsColumns[0]},
			RefTable:   questionsTable,
			RefColumns: []*schema.Column{questionsColumns[0]},
			OnDelete:   schema.Cascade,
		}},
		Indexes: []*schema.Index{
			{Name: "tag_tag", Columns: []*schema.Column{tagsColumns[1]}},
		},
	}

	attemptsColumns = []*schema.Column{
		{Name: "sequence", Type: field.TypeInt64},
		{Name: "learner_id", Type: field.TypeString, Size: 64},
		{Name: "question_id", Type: field.TypeString, Size: 64},
		{Name: "chosen_option_id", Type: field.TypeString, Size: 64},
		{Name: "correct", Type: field.TypeBool},
		{Name: "answered_at", Type: field.TypeTime},
	}
	attemptsTable = &schema.Table{
		Name:       tableAttempts,
		Columns:    attemptsColumns,
		PrimaryKey: []*schema.Column{attemptsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "attempt_learner_sequence", Columns: []*schema.Column{attemptsColumns[1], attemptsColumns[0]}},
			{Name: "attempt_answered_at", Columns: []*schema.Column{attemptsColumns[5]}},
		},
	}

	requestsColumns = []*schema.Column{
		{Name: "id", Type: field.TypeString, Size: 64},
		{Name: "criteria", Type: field.TypeString, Size: 8192},
		{Name: "cohort", Type: field.TypeString, Size: 65536},
		{Name: "status", Type: field.TypeString, Size: 16},
		{Name: "error", Type: field.TypeString, Size: 2048, Nullable: true},
		{Name: "created_at", Type: field.TypeTime},
		{Name: "completed_at", Type: field.TypeTime, Nullable: true},
	}
	requestsTable = &schema.Table{
		Name:       tableRequests,
		Columns:    requestsColumns,
		PrimaryKey: []*schema.Column{requestsColumns[0]},
		Indexes: []*schema.Index{
			{Name: "request_status_created", Columns: []*schema.Column{requestsColumns[3], requestsColumns[5]}},
		},
	}

	itemsColumns = []*schema.Column{
		{Name: "request_id", Type: field.TypeString, Size: 64},
		{Name: "position", Type: field.TypeInt},
		{Name: "question_id", Type: field.TypeString, Size: 64},
	}
	itemsTable = &schema.Table{
		Name:       tableItems,
		Columns:    itemsColumns,
		PrimaryKey: []*schema.Column{itemsColumns[0], itemsColumns[1]},
		ForeignKeys: []*schema.ForeignKey{{
			Symbol:     "assignment_items_requests_items",
			Columns:    []*schema.Column{itemsColumns[0]},
			RefTable:   requestsTable,
			RefColumns: []*schema.Column{requestsColumns[0]},
			OnDelete:   schema.Cascade,
		}},
	}

	sequenceColumns = []*schema.Column{
		{Name: "id", Type: field.TypeInt},
		{Name: "next_val", Type: field.TypeInt64, Default: 1},
	}
	sequenceTable = &schema.Table{
		Name:       tableSequence,
		Columns:    sequenceColumns,
		PrimaryKey: []*schema.Column{sequenceColumns[0]},
	}

	// tables holds every table managed by auto-migration.
	tables = []*schema.Table{
		learnersTable,
		wordSetsTable,
		wordsTable,
		itemStatesTable,
		reviewEventsTable,
		streaksTable,
		questionsTable,
		optionsTable,
		tagsTable,
		attemptsTable,
		requestsTable,
		itemsTable,
		sequenceTable,
	}
)
