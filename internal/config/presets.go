package config

import "sort"

var Presets = map[string]map[string]*Config{
	"test_satellites": {
		"orbit": {
			Scenario: "test_satellites", Integrator: "symplectic_euler", Dt: 1, Duration: 5560,
		},
		"day": {
			Scenario: "test_satellites", Integrator: "leapfrog", Dt: 10, Duration: 86400, SampleEvery: 360,
		},
		"precise": {
			Scenario: "test_satellites", Integrator: "rk4", Dt: 1, Duration: 5560,
		},
	},
	"stress": {
		"small": {
			Scenario: "stress", Integrator: "symplectic_euler", Dt: 10, Duration: 3600, Objects: 500,
		},
		"dense": {
			Scenario: "stress", Integrator: "symplectic_euler", Dt: 10, Duration: 3600, Objects: 5000,
		},
		"week": {
			Scenario: "stress", Integrator: "leapfrog", Dt: 60, Duration: 604800, Objects: 2000, SampleEvery: 60,
		},
	},
	"head_on": {
		"impact": {
			Scenario: "head_on", Integrator: "symplectic_euler", Dt: 0.1, Duration: 20, SampleEvery: 10,
		},
		"aftermath": {
			Scenario: "head_on", Integrator: "symplectic_euler", Dt: 1, Duration: 5560,
		},
	},
}

func GetPreset(scenario, preset string) *Config {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	cfg, ok := scenarioPresets[preset]
	if !ok {
		return nil
	}
	return cfg
}

func ListPresets(scenario string) []string {
	scenarioPresets, ok := Presets[scenario]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(scenarioPresets))
	for name := range scenarioPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
