package main

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zatekoja/erhospitalmatch/internal/application/services"
	"github.com/zatekoja/erhospitalmatch/internal/domain/entities"
	"github.com/zatekoja/erhospitalmatch/internal/evaluation"
)

func TestRecommendCmd_PrintsRanking(t *testing.T) {
	t.Setenv("STORE_LEVELDB_PATH", filepath.Join(t.TempDir(), "store"))

	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{
		"recommend",
		"--district", "강남구",
		"--lat", "37.4881",
		"--lon", "127.0856",
		"--severity", "HIGH",
		"--need-icu",
	})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "RANK")
	assert.Contains(t, out.String(), "A1100010")
}

func TestRecommendCmd_RequiresDistrict(t *testing.T) {
	root := rootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"recommend", "--lat", "37.5", "--lon", "127.0"})

	assert.Error(t, root.Execute())
}

func TestDistrictsCmd(t *testing.T) {
	t.Setenv("STORE_LEVELDB_PATH", filepath.Join(t.TempDir(), "store"))

	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"districts", "서울특별시"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "강남구")
}

func TestPrintResult_EmptyOutcomes(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printResult(&out, &services.RecommendationResult{Status: entities.RecommendationStatusNoCandidates}))
	assert.Contains(t, out.String(), "No hospital candidates")

	out.Reset()
	require.NoError(t, printResult(&out, &services.RecommendationResult{
		Status:         entities.RecommendationStatusNoAcceptableCandidates,
		CandidateCount: 4,
	}))
	assert.Contains(t, out.String(), "4 candidates")
}

func TestEvaluateCmd_ReportsMetrics(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("STORE_LEVELDB_PATH", filepath.Join(dir, "store"))

	casesPath := filepath.Join(dir, "cases.json")
	require.NoError(t, os.WriteFile(casesPath, []byte(`[
		{"id": "gangnam-icu", "city": "서울특별시", "district": "강남구", "lat": 37.4881, "lon": 127.0856,
		 "patient": {"severity": "HIGH", "suspected_condition": "CARDIAC", "required_resources": {"need_icu": true}, "confidence": 1.0},
		 "accepted_hpids": ["A1100010"], "difficulty": "easy"}
	]`), 0o600))

	var out bytes.Buffer
	root := rootCmd()
	root.SetOut(&out)
	root.SetArgs([]string{"evaluate", "--cases", casesPath, "--k", "3"})

	require.NoError(t, root.Execute())
	assert.Contains(t, out.String(), "cases=1 failed=0")
	assert.Contains(t, out.String(), "Recall@3=")
	assert.Contains(t, out.String(), "CARDIAC")
}

func TestEvaluateCmd_RejectsInvalidCases(t *testing.T) {
	casesPath := filepath.Join(t.TempDir(), "cases.json")
	require.NoError(t, os.WriteFile(casesPath, []byte(`[{"id": "x"}]`), 0o600))

	root := rootCmd()
	root.SetOut(&bytes.Buffer{})
	root.SetErr(&bytes.Buffer{})
	root.SetArgs([]string{"evaluate", "--cases", casesPath})

	assert.Error(t, root.Execute())
}

func TestPrintSummary_SortsConditions(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printSummary(&out, &evaluation.EvalSummary{
		K:          5,
		TotalCases: 2,
		ByCondition: map[entities.Condition]*evaluation.ConditionSummary{
			entities.ConditionTrauma:  {Count: 1, AvgRecallAtK: 1},
			entities.ConditionCardiac: {Count: 1},
		},
	}))

	text := out.String()
	assert.Less(t, bytes.Index([]byte(text), []byte("CARDIAC")), bytes.Index([]byte(text), []byte("TRAUMA")))
}
