package skill

// Group is a tier of the skill catalog.
type Group struct {
	Level  string   `json:"level"`
	Skills []string `json:"skills"`
}

var catalog = []Group{
	{Level: "beginner", Skills: []string{"Derecha", "Revés", "Volea de derecha", "Volea de revés", "Servicio"}},
	{Level: "intermediate", Skills: []string{"Bandeja", "Pared de fondo", "Pared lateral", "Remate", "Táctica básica"}},
	{Level: "advanced", Skills: []string{"Vibora", "Bajada de pared", "Defensa de smash", "Doble pared", "Táctica avanzada"}},
	{Level: "pro", Skills: []string{"Globo ofensivo", "Contraataque", "Saque con efecto", "X3 y X4", "Finta"}},
}

var playerLevels = []string{"D-", "D", "D+", "C-", "C", "C+", "B-", "B", "B+", "A"}

var defaultRatings = []Rating{
	{"Forehand", 50}, {"Backhand", 50}, {"Volley", 50},
	{"Smash", 50}, {"Serve", 50}, {"Lob", 50},
}

// Catalog returns the padel skills grouped by tier, easiest first.
func Catalog() []Group {
	out := make([]Group, len(catalog))
	for i, g := range catalog {
		out[i] = Group{Level: g.Level, Skills: append([]string(nil), g.Skills...)}
	}
	return out
}

// AllSkills is the catalog flattened in tier order.
func AllSkills() []string {
	var out []string
	for _, g := range catalog {
		out = append(out, g.Skills...)
	}
	return out
}

// PlayerLevels is the level ladder from D- up to A.
func PlayerLevels() []string {
	return append([]string(nil), playerLevels...)
}

// DefaultRatings is what the skill editor starts from for a user
// without ratings.
func DefaultRatings() []Rating {
	return append([]Rating(nil), defaultRatings...)
}
