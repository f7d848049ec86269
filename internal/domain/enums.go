package domain

type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// ValidSkillLevels is the canonical set of accepted skill level strings.
var ValidSkillLevels = map[SkillLevel]bool{
	SkillBeginner: true, SkillIntermediate: true, SkillAdvanced: true,
}

type Difficulty string

const (
	DifficultyEasy        Difficulty = "easy"
	DifficultyModerate    Difficulty = "moderate"
	DifficultyChallenging Difficulty = "challenging"
)

// ValidDifficulties is the canonical set of accepted task difficulty strings.
var ValidDifficulties = map[Difficulty]bool{
	DifficultyEasy: true, DifficultyModerate: true, DifficultyChallenging: true,
}

type GenerationRequestType string

const (
	RequestFullPlan       GenerationRequestType = "full_plan"
	RequestRegenerateTask GenerationRequestType = "regenerate_task"
)

type PlanState string

const (
	PlanDraft            PlanState = "draft"
	PlanGenerating       PlanState = "generating"
	PlanReady            PlanState = "ready"
	PlanRegeneratingTask PlanState = "regenerating_task"
)
