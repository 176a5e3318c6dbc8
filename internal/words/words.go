// internal/words/words.go

// Package words carries the built-in word pool used when a session is created
// without a caller-supplied pool.
package words

// Default returns a copy of the built-in pool, safe for the caller to shuffle.
func Default() []string {
	out := make([]string, len(builtin))
	copy(out, builtin)
	return out
}

var builtin = []string{
	"airport", "avalanche", "backpack", "bakery", "balloon", "bicycle",
	"birthday", "blanket", "bubble", "butterfly", "calendar", "campfire",
	"carousel", "cartoon", "castle", "compass", "dinosaur", "dolphin",
	"dragon", "elevator", "engine", "firework", "flashlight", "fountain",
	"galaxy", "glacier", "gondola", "hammock", "harvest", "headphones",
	"hurricane", "iceberg", "island", "jigsaw", "jungle", "kangaroo",
	"lantern", "lighthouse", "lightning", "magnet", "marathon", "mermaid",
	"microscope", "mirror", "moustache", "ninja", "orchestra", "origami",
	"parachute", "passport", "penguin", "pillow", "pirate", "pyramid",
	"rainbow", "robot", "sandcastle", "satellite", "scarecrow", "shadow",
	"skeleton", "snowman", "submarine", "suitcase", "telescope", "theater",
	"time machine", "tornado", "treasure", "trophy", "umbrella", "unicorn",
	"vacuum", "volcano", "waterfall", "whisper", "windmill", "zeppelin",
}
