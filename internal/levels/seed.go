package levels

import "grimoire-server/internal/models"

// BuiltinLevels returns the seed chapters of the default Hermione
// scenario. The first chapter starts unlocked, everything else locked.
// Callers get a fresh slice; the seed itself is never mutated.
func BuiltinLevels() []models.Level {
	return []models.Level{
		{
			ID:          "chap-1-bibliotheque",
			Title:       "Chapitre 1 : Rencontre à la Bibliothèque",
			Description: "Saluez Hermione Granger qui révise à la bibliothèque. Ne faites pas trop de bruit !",
			Status:      models.LevelStatusUnlocked,
			Order:       1,
		},
		{
			ID:          "chap-2-wingardium",
			Title:       "Chapitre 2 : La Plume qui Lévite",
			Description: "Demandez à Hermione de vous apprendre le sortilège de Lévitation (Wingardium Leviosa).",
			Status:      models.LevelStatusLocked,
			Order:       2,
		},
		{
			ID:          "chap-3-ecoute",
			Title:       "Chapitre 3 : Une Oreille Attentive",
			Description: "Hermione semble stressée. Offrez-lui une écoute attentive pour la calmer.",
			Status:      models.LevelStatusLocked,
			Order:       3,
		},
		{
			ID:          "chap-4-retourneur",
			Title:       "Chapitre 4 : Le Secret du Temps",
			Description: "Essayez de convaincre Hermione de vous parler de son emploi du temps impossible.",
			Status:      models.LevelStatusLocked,
			Order:       4,
		},
		{
			ID:          "chap-5-espoir",
			Title:       "Chapitre 5 : Lueur d'Espoir",
			Description: "Réussissez à faire sourire Hermione ou à lui redonner espoir (Victoire).",
			Status:      models.LevelStatusLocked,
			Order:       5,
		},
	}
}
