package rig

import (
	"crypto/sha256"
	"slices"
	"strings"
)

var adjectives = []string{
	"happy", "sleepy", "grumpy", "bouncy", "fluffy", "clever", "silly",
	"mighty", "gentle", "brave", "peaceful", "witty", "jolly", "friendly",
	"lively", "perky", "cute", "funny", "quirky", "sassy", "snug",
	"snarky", "snazzy", "snooty", "wobbly", "zippy", "pudgy", "clumsy",
	"dizzy", "goofy", "plucky", "wiggly", "bumbling", "derpy", "peppy",
	"squiggly", "wacky", "zesty", "loopy", "fuzzy",
}

var animals = []string{
	"panda", "otter", "penguin", "koala", "dolphin", "rabbit", "raccoon",
	"fox", "hedgehog", "squirrel", "beaver", "badger", "wombat", "lemur",
	"lynx", "seal", "sloth", "tiger", "zebra", "giraffe", "monkey",
	"llama", "walrus", "hippo", "meerkat", "platypus", "quokka",
	"narwhal", "capybara", "pangolin", "axolotl", "ferret",
}

// PetName derives a deterministic human friendly name for a worker
// id. Hardware addresses cluster by vendor prefix, so the id is
// hashed to spread names evenly over the tables.
func PetName(workerID string) string {
	digest := sha256.Sum256([]byte(workerID))

	adjective := int(digest[0])<<16 | int(digest[1])<<8 | int(digest[2])
	animal := int(digest[29])<<16 | int(digest[30])<<8 | int(digest[31])

	return adjectives[adjective%len(adjectives)] + "-" + animals[animal%len(animals)]
}

// LooksLikePetName reports whether name has the adjective-animal
// shape produced by PetName.
func LooksLikePetName(name string) bool {
	adjective, animal, ok := strings.Cut(name, "-")
	if !ok {
		return false
	}
	return slices.Contains(adjectives, adjective) && slices.Contains(animals, animal)
}
