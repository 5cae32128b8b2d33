package main

const (
	// defaultTrials is the number of trials per experiment.
	defaultTrials = 5000

	// defaultTries is the search budget per trial.
	defaultTries = 200
)

// experiment is one (group, section, adversary) row of the sweep.
type experiment struct {
	group     int
	section   int
	malicious int
}

// defaultExperiments keeps the section at about 2.5 groups and the
// adversary just above half a group.
var defaultExperiments = []experiment{
	{group: 10, section: 25, malicious: 6},
	{group: 12, section: 30, malicious: 7},
	{group: 15, section: 37, malicious: 8},
	{group: 20, section: 50, malicious: 11},
	{group: 31, section: 76, malicious: 16},
}
