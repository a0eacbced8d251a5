package career

import "math"

// Career levels run from the intro level to the final level inclusive. The
// completed-level set and the spawn table share this range.
const (
	IntroLevel = 0
	FinalLevel = 5
)

// ValidLevel reports whether n is a career level.
func ValidLevel(n int) bool {
	return n >= IntroLevel && n <= FinalLevel
}

// SpawnPoint is where the car is placed when a level starts. Rotation is a
// yaw angle in radians.
type SpawnPoint struct {
	Level    int        `json:"level"`
	Position [3]float64 `json:"position"`
	Rotation float64    `json:"rotation"`
}

var spawnPoints = [FinalLevel - IntroLevel + 1]SpawnPoint{
	{Level: 0, Position: [3]float64{1081.0, 0.2, 525.0}, Rotation: math.Pi},
	{Level: 1, Position: [3]float64{848.8, 2, 415.6}, Rotation: -math.Pi / 180},
	{Level: 2, Position: [3]float64{31337.9, 20, -10333.3}, Rotation: math.Pi},
	{Level: 3, Position: [3]float64{31437.9, 20, -10333.3}, Rotation: math.Pi},
	{Level: 4, Position: [3]float64{31537.9, 20, -10333.3}, Rotation: math.Pi},
	{Level: 5, Position: [3]float64{31637.9, 20, -10333.3}, Rotation: math.Pi},
}

// Spawn returns the spawn point of level.
func Spawn(level int) (SpawnPoint, bool) {
	if !ValidLevel(level) {
		return SpawnPoint{}, false
	}
	return spawnPoints[level-IntroLevel], true
}

// Levels returns the spawn table ordered by level.
func Levels() []SpawnPoint {
	out := make([]SpawnPoint, len(spawnPoints))
	copy(out, spawnPoints[:])
	return out
}
