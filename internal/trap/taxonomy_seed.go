package trap

// seedTypes is the standard sentence-completion trap taxonomy.
// 20 types across 5 groups.
var seedTypes = []Type{
	{
		Code:        "TRAP_MEANING_FLOW",
		Group:       GroupSemantic,
		Title:       "Meaning flow disruption",
		Description: "Breaks the sentence logic so the completion does not follow naturally",
		Order:       1,
		RelatedTags: []string{"semantic_mismatch", "logical_inconsistency"},
	},
	{
		Code:        "TRAP_LOGIC_RELATION",
		Group:       GroupLogic,
		Title:       "Logical relation error",
		Description: "Wrong connector type; however/therefore/whereas/because mismatch",
		Order:       2,
		RelatedTags: []string{"wrong_connector_type", "logical_inconsistency", "reversed_relation"},
	},
	{
		Code:        "TRAP_CONTRAST_SIGNAL",
		Group:       GroupLogic,
		Title:       "Contrast signal",
		Description: "Misdirects contrast signals such as although/however/despite",
		Order:       3,
		RelatedTags: []string{"wrong_connector_type", "reversed_relation"},
	},
	{
		Code:        "TRAP_CAUSE_EFFECT",
		Group:       GroupLogic,
		Title:       "Cause and effect",
		Description: "The because/therefore/as a result chain is reversed or wrong",
		Order:       4,
		RelatedTags: []string{"reversed_relation", "logical_inconsistency"},
	},
	{
		Code:        "TRAP_CONDITION_HYPOTHESIS",
		Group:       GroupLogic,
		Title:       "Condition and hypothesis",
		Description: "if/unless/in case/as long as create a false requirement",
		Order:       5,
		RelatedTags: []string{"logical_inconsistency"},
	},
	{
		Code:        "TRAP_TIME_SEQUENCE",
		Group:       GroupGrammar,
		Title:       "Time sequence mismatch",
		Description: "before/after/when/while or the event order is broken",
		Order:       6,
		RelatedTags: []string{"sequence_error", "tense_mismatch"},
	},
	{
		Code:        "TRAP_TENSE_ASPECT",
		Group:       GroupGrammar,
		Title:       "Tense and aspect mismatch",
		Description: "Past/present/future or perfect/continuous agreement is broken",
		Order:       7,
		RelatedTags: []string{"tense_mismatch", "aspect_mismatch"},
	},
	{
		Code:        "TRAP_MODALITY_CERTAINTY",
		Group:       GroupGrammar,
		Title:       "Modality and certainty",
		Description: "The certainty of may/might/must/should/can conflicts with the stem",
		Order:       8,
		RelatedTags: []string{"modality_mismatch"},
	},
	{
		Code:        "TRAP_VOICE_AGREEMENT",
		Group:       GroupGrammar,
		Title:       "Voice agreement",
		Description: "Active voice where passive is required, or the agent logic is broken",
		Order:       9,
		RelatedTags: []string{"passive_active_mismatch"},
	},
	{
		Code:        "TRAP_REFERENCE_PRONOUN",
		Group:       GroupGrammar,
		Title:       "Reference and pronoun",
		Description: "it/they/this/these point to the wrong antecedent",
		Order:       10,
		RelatedTags: []string{"pronoun_reference_error"},
	},
	{
		Code:        "TRAP_SV_AGREEMENT",
		Group:       GroupGrammar,
		Title:       "Subject-verb agreement",
		Description: "Singular/plural or main verb agreement is broken",
		Order:       11,
		RelatedTags: []string{"subject_verb_disagreement"},
	},
	{
		Code:        "TRAP_PARALLELISM",
		Group:       GroupStructural,
		Title:       "Parallel structure",
		Description: "not only...but also / both...and structures are broken",
		Order:       12,
		RelatedTags: []string{"broken_parallelism"},
	},
	{
		Code:        "TRAP_RELATIVE_CLAUSE",
		Group:       GroupStructural,
		Title:       "Relative clause",
		Description: "which/that/who/where attach to the wrong noun or distort meaning",
		Order:       13,
		RelatedTags: []string{"wrong_relative_attachment"},
	},
	{
		Code:        "TRAP_PREPOSITION_PATTERN",
		Group:       GroupStructural,
		Title:       "Preposition pattern",
		Description: "Fixed patterns such as associated with / risk of / exposure to are wrong",
		Order:       14,
		RelatedTags: []string{"wrong_preposition_pattern"},
	},
	{
		Code:        "TRAP_COLLOCATION",
		Group:       GroupSemantic,
		Title:       "Collocation",
		Description: "Unnatural academic usage or wrong word pairing",
		Order:       15,
		RelatedTags: []string{"unnatural_collocation"},
	},
	{
		Code:        "TRAP_REGISTER_HEALTH",
		Group:       GroupDomain,
		Title:       "Health register",
		Description: "Leaves the academic health register or picks the wrong term",
		Order:       16,
		RelatedTags: []string{"health_register_mismatch"},
	},
	{
		Code:        "TRAP_SCOPE_QUANTIFIER",
		Group:       GroupSemantic,
		Title:       "Scope and quantifier",
		Description: "Overclaims with some/most/only/rarely or conflicts with a quantifier",
		Order:       17,
		RelatedTags: []string{"overgeneralization", "overspecification"},
	},
	{
		Code:        "TRAP_NEGATION",
		Group:       GroupSemantic,
		Title:       "Negation",
		Description: "Polarity flips through not/no/little/hardly",
		Order:       18,
		RelatedTags: []string{"polarity_error"},
	},
	{
		Code:        "TRAP_DEFINITION_EXPLANATION",
		Group:       GroupSemantic,
		Title:       "Definition and explanation",
		Description: "that is / namely / in other words introduce a wrong explanation",
		Order:       19,
		RelatedTags: []string{"semantic_mismatch"},
	},
	{
		Code:        "TRAP_TOPIC_DRIFT",
		Group:       GroupSemantic,
		Title:       "Topic drift",
		Description: "Pulls the sentence away from its subject",
		Order:       20,
		RelatedTags: []string{"topic_drift"},
	},
}
