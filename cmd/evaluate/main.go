package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/harborpoint/dealflow/internal/models"
	"github.com/harborpoint/dealflow/internal/scoring"
)

// Offline evaluator: runs the qualification engine against a property
// snapshot and a rule set read from JSON files, without a database.
//
//	evaluate -property property.json -rules rules.json
func main() {
	propertyPath := flag.String("property", "", "path to a property snapshot JSON file")
	rulesPath := flag.String("rules", "", "path to a rule set JSON file")
	repairCosts := flag.Float64("repairs", 0, "estimated repair costs for the MAO calculation")
	flag.Parse()

	if *propertyPath == "" || *rulesPath == "" {
		flag.Usage()
		os.Exit(2)
	}

	snapshot, err := readSnapshot(*propertyPath)
	if err != nil {
		log.Fatalf("Failed to read property: %v", err)
	}

	rules, err := readRules(*rulesPath)
	if err != nil {
		log.Fatalf("Failed to read rules: %v", err)
	}

	engine := scoring.NewEngine()
	result := engine.Evaluate(snapshot, rules)

	output := map[string]interface{}{
		"evaluation": result,
	}

	if arv, ok := snapshot["estimatedValue"].(float64); ok {
		mao := scoring.CalculateMAO(arv, *repairCosts)
		output["mao"] = mao
	}

	encoded, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode result: %v", err)
	}
	fmt.Println(string(encoded))

	if result.Status == scoring.StatusRejected {
		os.Exit(1)
	}
}

func readSnapshot(path string) (map[string]interface{}, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var snapshot map[string]interface{}
	if err := json.Unmarshal(raw, &snapshot); err != nil {
		return nil, fmt.Errorf("invalid property JSON: %w", err)
	}
	return snapshot, nil
}

func readRules(path string) ([]models.QualificationRule, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var rules []models.QualificationRule
	if err := json.Unmarshal(raw, &rules); err != nil {
		return nil, fmt.Errorf("invalid rules JSON: %w", err)
	}

	for i := range rules {
		if err := rules[i].ValidateShape(); err != nil {
			return nil, fmt.Errorf("rule %q: %w", rules[i].Name, err)
		}
	}
	return rules, nil
}
