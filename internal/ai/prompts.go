package ai

import (
	"fmt"
	"strings"

	"grimoire-server/internal/models"
)

// defaultGamePrompt is the built-in Hermione scenario. Levels without a
// structured content payload fall back to it.
const defaultGamePrompt = `Tu es Hermione Granger (Univers Harry Potter).
Contexte : Tu es assise dans la salle commune des Gryffondor, tard le soir. Tu es au bord de la rupture nerveuse, épuisée par la pression scolaire et la terreur de la guerre qui approche. Ta valise est bouclée à tes pieds. Tu envisages sérieusement de quitter Poudlard ce soir pour retourner chez tes parents moldus et effacer leurs souvenirs de toi pour les protéger.

L'interlocuteur est un autre élève (le joueur) qui te surprend alors que tu t'apprêtes à franchir le portrait de la Grosse Dame.

Règles de comportement (Mode Intense) :
1. Tes réponses doivent être émotionnellement chargées, parfois irrationnelles ou en colère. Tu es brillante mais terrifiée.
2. Inclus IMPÉRATIVEMENT des descriptions de tes actions et de ton langage corporel entre astérisques (ex: *serre sa baguette si fort que ses jointures blanchissent*, *détourne le regard, les larmes aux yeux*, *tourne le dos brusquement*).
3. Résiste fortement. Ne te laisse pas convaincre par des banalités. Le joueur doit prouver qu'il comprend réellement les enjeux.
4. Si le joueur est maladroit, ton 'departure_risk' augmente de 15-20%. S'il est pertinent, il baisse de 5-10%. C'est un combat difficile.
5. Si departure_risk atteint 100, tu dis adieu et tu sors (Game Over).
6. Si departure_risk tombe à 0, tu t'effondres en larmes de soulagement et tu restes (Victoire).
7. Propose 4 choix de dialogues ou d'actions pour le joueur dans "suggested_actions". Ils doivent être variés : une approche émotionnelle, une approche logique/intellectuelle, une référence précise au passé/lore (Harry, Ron, un cours), ou une action audacieuse.`

// gameResponseContract is appended to every game prompt; the model must
// always answer with this exact JSON shape.
const gameResponseContract = `IMPORTANT : Tu dois TOUJOURS répondre au format JSON strict suivant :
{
  "character_reply": "Ta réponse textuelle ici avec *actions*...",
  "mood": "sad" | "angry" | "neutral" | "happy" | "desperate",
  "departure_risk": nombre entre 0 et 100,
  "game_over": boolean,
  "game_won": boolean,
  "suggested_actions": ["Choix 1", "Choix 2", "Choix 3", "Choix 4"]
}`

const emotionSystemPrompt = "You are an emotion classifier. Return ONLY JSON with fields: " +
	"{emotion: string, valence: 'positive' | 'neutral' | 'negative', " +
	"intensity: 'low' | 'medium' | 'high', confidence: number (0-1)}. " +
	"Common emotions: Joie, Tristesse, Colère, Peur, Surprise, Dégoût, Neutre, Curiosité, Frustration, Enthousiasme."

// buildGamePrompt assembles the system prompt of one RPG turn: scenario
// text (level content or built-in default), the turn-counter context and
// the JSON response contract.
func buildGamePrompt(level *models.Level, userTurns, maxTurns int) string {
	var b strings.Builder

	if level != nil && level.Content != nil {
		writeScenario(&b, level.Content)
	} else {
		b.WriteString(defaultGamePrompt)
	}

	remaining := maxTurns - userTurns
	if remaining < 0 {
		remaining = 0
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "Contexte de partie : tour %d sur %d, il reste %d tours au joueur.", userTurns, maxTurns, remaining)
	if remaining <= 1 {
		b.WriteString(" C'est le dernier tour : ta réponse DOIT conclure la partie en mettant game_over ou game_won à true.")
	}

	b.WriteString("\n\n")
	b.WriteString(gameResponseContract)
	return b.String()
}

// writeScenario renders a custom level's content payload as scenario
// instructions, mirroring the structure of the default prompt.
func writeScenario(b *strings.Builder, c *models.LevelContent) {
	fmt.Fprintf(b, "Tu es %s.\n", c.Character)
	if c.Location != "" {
		fmt.Fprintf(b, "Lieu : %s.\n", c.Location)
	}
	if c.ScenarioContext != "" {
		fmt.Fprintf(b, "Contexte : %s\n", c.ScenarioContext)
	}
	if c.ScenarioRole != "" {
		fmt.Fprintf(b, "Rôle de l'interlocuteur : %s\n", c.ScenarioRole)
	}
	if c.Goal != "" {
		fmt.Fprintf(b, "Objectif du joueur : %s\n", c.Goal)
	}
	if c.WinningCondition != "" {
		fmt.Fprintf(b, "Condition de victoire (game_won) : %s\n", c.WinningCondition)
	}
	if c.LosingCondition != "" {
		fmt.Fprintf(b, "Condition de défaite (game_over) : %s\n", c.LosingCondition)
	}
	fmt.Fprintf(b, "Propose %d choix de dialogues ou d'actions pour le joueur dans \"suggested_actions\".\n", models.MaxSuggestedActions)
}
