// try_profiles.go posts a file of named buyer profiles to a running Shortlist
// API and prints the ranked shortlist for each.
//
// Usage:
//
//	go run scripts/try_profiles.go -profiles profiles.json -api http://localhost:8700 -top 3
//
// The file holds a JSON array of {"name": "...", "profile": {...}} objects.
package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/MikeSquared-Agency/Shortlist/internal/engine"
	"github.com/MikeSquared-Agency/Shortlist/internal/profile"
)

type namedProfile struct {
	Name    string          `json:"name"`
	Profile profile.Profile `json:"profile"`
}

func main() {
	path := flag.String("profiles", "profiles.json", "path to a JSON array of named profiles")
	apiURL := flag.String("api", "http://localhost:8700", "Shortlist API base URL")
	clientID := flag.String("client", "try-profiles", "X-Client-ID header value")
	topN := flag.Int("top", 3, "recommendations per profile")
	dryRun := flag.Bool("dry-run", false, "validate profiles without posting")
	flag.Parse()

	data, err := os.ReadFile(*path)
	if err != nil {
		log.Fatalf("read profiles: %v", err)
	}
	var profiles []namedProfile
	if err := json.Unmarshal(data, &profiles); err != nil {
		log.Fatalf("parse profiles: %v", err)
	}

	if *dryRun {
		for i, np := range profiles {
			status := "ok"
			if err := np.Profile.Validate(); err != nil {
				status = err.Error()
			}
			fmt.Printf("[%d] %s (budget=%.0f-%.0f, fingerprint=%s): %s\n",
				i+1, np.Name, np.Profile.BudgetMin, np.Profile.BudgetMax, np.Profile.Fingerprint()[:12], status)
		}
		return
	}

	client := &http.Client{Timeout: 30 * time.Second}
	ok, failed := 0, 0
	for _, np := range profiles {
		body, _ := json.Marshal(np.Profile)
		url := fmt.Sprintf("%s/api/v1/recommendations?top_n=%d", *apiURL, *topN)
		req, err := http.NewRequest("POST", url, bytes.NewReader(body))
		if err != nil {
			log.Printf("skip %q: %v", np.Name, err)
			failed++
			continue
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-Client-ID", *clientID)

		resp, err := client.Do(req)
		if err != nil {
			log.Printf("skip %q: %v", np.Name, err)
			failed++
			continue
		}
		var res engine.Result
		decodeErr := json.NewDecoder(resp.Body).Decode(&res)
		resp.Body.Close()
		if resp.StatusCode != http.StatusOK || decodeErr != nil {
			log.Printf("skip %q: status %d", np.Name, resp.StatusCode)
			failed++
			continue
		}

		ok++
		fmt.Printf("%s: %d of %d candidates\n", np.Name, res.TotalRecommendations, res.CandidatesScored)
		if len(res.Recommendations) == 0 {
			fmt.Printf("  %s %s\n", res.Message, res.Suggestion)
		}
		for _, rec := range res.Recommendations {
			fmt.Printf("  #%d %-32s %5.1f%%  %s\n", rec.Rank, rec.Vehicle.DisplayName(), rec.MatchPercentage, rec.Justification)
		}
	}

	log.Printf("done: %d ranked, %d failed", ok, failed)
}
