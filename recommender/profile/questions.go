package profile

// Likert question IDs. Each answer is an integer on a 1-5 scale.
const (
	QuestionEnergy   = "q1_energy"
	QuestionCalm     = "q2_calm"
	QuestionDance    = "q3_dance"
	QuestionHappy    = "q4_happy"
	QuestionAcoustic = "q5_acoustic"
	QuestionLoudness = "q6_loudness"
	QuestionTempo    = "q7_tempo"
	QuestionOpenness = "q8_openness"
)

// Open question IDs. Answers are free text or comma-separated lists.
const (
	QuestionMood     = "qo1_mood"
	QuestionContext  = "qo2_context"
	QuestionArtists  = "qo3_artists"
	QuestionGenres   = "qo4_genres"
	QuestionEmotions = "qo5_emotions"
)

// Preference dimensions produced by Likert extraction.
const (
	DimensionEnergy       = "energy"
	DimensionCalmness     = "calmness"
	DimensionDanceability = "danceability"
	DimensionValence      = "valence"
	DimensionAcousticness = "acousticness"
	DimensionLoudness     = "loudness"
	DimensionTempo        = "tempo"
	DimensionOpenness     = "openness"
)

// LikertQuestion describes one 1-5 scale question.
type LikertQuestion struct {
	ID        string `json:"id"`
	Question  string `json:"question"`
	Dimension string `json:"dimension"`
	Scale     string `json:"scale"`
}

// OpenQuestion describes one free-text or list question.
type OpenQuestion struct {
	ID          string `json:"id"`
	Question    string `json:"question"`
	Type        string `json:"type"` // "text" or "list"
	Placeholder string `json:"placeholder"`
}

// Open question answer types.
const (
	AnswerText = "text"
	AnswerList = "list"
)

// likertQuestions is the fixed Likert question vocabulary, in display order.
var likertQuestions = []LikertQuestion{
	{QuestionEnergy, "How much do you enjoy energetic, dynamic music?", DimensionEnergy, "1 (not at all) to 5 (very much)"},
	{QuestionCalm, "How much do you appreciate calm, relaxing music?", DimensionCalmness, "1 (not at all) to 5 (very much)"},
	{QuestionDance, "How much do you enjoy danceable music?", DimensionDanceability, "1 (not at all) to 5 (very much)"},
	{QuestionHappy, "Do you prefer upbeat, positive music?", DimensionValence, "1 (no, rather melancholic) to 5 (yes, very upbeat)"},
	{QuestionAcoustic, "Do you appreciate acoustic and instrumental music?", DimensionAcousticness, "1 (not at all) to 5 (very much)"},
	{QuestionLoudness, "What sound intensity do you prefer?", DimensionLoudness, "1 (very soft) to 5 (very loud)"},
	{QuestionTempo, "Do you prefer a fast or a slow rhythm?", DimensionTempo, "1 (very slow) to 5 (very fast)"},
	{QuestionOpenness, "Are you open to discovering new music genres?", DimensionOpenness, "1 (no, I stick to my styles) to 5 (yes, I love discovering)"},
}

// openQuestions is the fixed open question vocabulary, in display order.
var openQuestions = []OpenQuestion{
	{QuestionMood, "Describe the musical mood or atmosphere you are looking for right now", AnswerText, "e.g. something melancholic but motivating to work to..."},
	{QuestionContext, "In what context will you listen to this music?", AnswerText, "e.g. while working out, driving, focusing..."},
	{QuestionArtists, "Who are your favorite artists or bands? (comma separated)", AnswerList, "e.g. Coldplay, Adele, The Killers"},
	{QuestionGenres, "Which music genres do you usually listen to? (comma separated)", AnswerList, "e.g. rock, pop, electro, jazz"},
	{QuestionEmotions, "Which emotions do you want to feel while listening?", AnswerText, "e.g. nostalgia, joy, energy, serenity..."},
}

// LikertQuestions returns the Likert question vocabulary.
func LikertQuestions() []LikertQuestion {
	out := make([]LikertQuestion, len(likertQuestions))
	copy(out, likertQuestions)
	return out
}

// OpenQuestions returns the open question vocabulary.
func OpenQuestions() []OpenQuestion {
	out := make([]OpenQuestion, len(openQuestions))
	copy(out, openQuestions)
	return out
}

// dimensionByQuestion maps a Likert question ID to its preference dimension.
var dimensionByQuestion = func() map[string]string {
	m := make(map[string]string, len(likertQuestions))
	for _, q := range likertQuestions {
		m[q.ID] = q.Dimension
	}
	return m
}()

// listQuestions marks open questions whose answers are lists.
var listQuestions = map[string]bool{
	QuestionArtists: true,
	QuestionGenres:  true,
}
