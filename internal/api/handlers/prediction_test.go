package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridironlabs/playcall/internal/dataset"
	"github.com/gridironlabs/playcall/internal/model"
	"github.com/gridironlabs/playcall/internal/services"
)

func setupRouter(t *testing.T, trained bool) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	params := model.DefaultParams()
	params.TreeCount = 30
	params.MaxDepth = 3
	svc := services.NewPredictorService(model.New(params), dataset.NewPreparer(), nil, "", 60)
	if trained {
		_, err := svc.Retrain(dataset.GenerateSynthetic(400, 42), dataset.SourceSynthetic)
		require.NoError(t, err)
	}

	router := gin.New()
	predictionHandler := NewPredictionHandler(svc)
	trainingHandler := NewTrainingHandler(svc, nil)
	router.POST("/predict", predictionHandler.Predict)
	router.POST("/recommend", predictionHandler.Recommend)
	router.POST("/explain", predictionHandler.Explain)
	router.POST("/features", predictionHandler.Features)
	router.GET("/model/importance", predictionHandler.FeatureImportance)
	router.GET("/model/info", predictionHandler.ModelInfo)
	router.POST("/train", trainingHandler.Train)
	return router
}

func postJSON(router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	data, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestPredictEndpoint(t *testing.T) {
	router := setupRouter(t, true)

	w := postJSON(router, "/predict", gin.H{
		"down": 1, "yards_to_go": 10, "distance_to_goal": 50, "play_type": "pass",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			PlayType      string  `json:"play_type"`
			ExpectedYards float64 `json:"expected_yards"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "pass", resp.Data.PlayType)
	assert.GreaterOrEqual(t, resp.Data.ExpectedYards, 0.0)
}

func TestPredictUntrainedReturnsConflict(t *testing.T) {
	router := setupRouter(t, false)

	w := postJSON(router, "/predict", gin.H{
		"down": 1, "yards_to_go": 10, "distance_to_goal": 50, "play_type": "pass",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Contains(t, w.Body.String(), "MODEL_NOT_TRAINED")
}

func TestPredictValidation(t *testing.T) {
	router := setupRouter(t, true)

	tests := []struct {
		name string
		body gin.H
	}{
		{"missing play type", gin.H{"down": 1, "yards_to_go": 10, "distance_to_goal": 50}},
		{"down out of range", gin.H{"down": 5, "yards_to_go": 10, "distance_to_goal": 50, "play_type": "run"}},
		{"bad play type", gin.H{"down": 1, "yards_to_go": 10, "distance_to_goal": 50, "play_type": "kick"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := postJSON(router, "/predict", tt.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}
}

func TestRecommendEndpoint(t *testing.T) {
	router := setupRouter(t, true)

	w := postJSON(router, "/recommend", gin.H{
		"down": 3, "yards_to_go": 8, "distance_to_goal": 40,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data model.Recommendation `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Contains(t, []string{"run", "pass"}, resp.Data.RecommendedPlay)
	assert.Contains(t, []string{"high", "moderate"}, resp.Data.Confidence)
	assert.Equal(t, "Passing down - defense expects pass", resp.Data.ContextAdvice)
}

func TestExplainEndpoint(t *testing.T) {
	router := setupRouter(t, true)

	w := postJSON(router, "/explain", gin.H{
		"down": 3, "yards_to_go": 7, "distance_to_goal": 45, "play_type": "run",
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []model.Attribution `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Data)
}

func TestFeaturesEndpoint(t *testing.T) {
	router := setupRouter(t, false)

	w := postJSON(router, "/features", gin.H{
		"down": 4, "yards_to_go": 1, "distance_to_goal": 3,
	})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data map[string]float64 `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1.0, resp.Data["fourth_and_short"])
	assert.Equal(t, 1.0, resp.Data["goal_line"])
}

func TestImportanceEndpoint(t *testing.T) {
	router := setupRouter(t, true)

	req := httptest.NewRequest(http.MethodGet, "/model/importance", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data []model.Importance `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Data)
	for i := 1; i < len(resp.Data); i++ {
		assert.GreaterOrEqual(t, resp.Data[i-1].Score, resp.Data[i].Score)
	}
}

func TestTrainEndpointWithInlinePlays(t *testing.T) {
	router := setupRouter(t, false)

	plays := dataset.GenerateSynthetic(400, 9)
	w := postJSON(router, "/train", gin.H{"plays": plays})
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data model.TrainingReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 400, resp.Data.Rows)
}

func TestTrainEndpointNoPlaysNoStore(t *testing.T) {
	router := setupRouter(t, false)
	w := postJSON(router, "/train", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestTrainEndpointUnusableRows(t *testing.T) {
	router := setupRouter(t, false)

	w := postJSON(router, "/train", gin.H{"plays": []gin.H{
		{"play_type": "punt", "yards_gained": 40.0, "down": 4, "yards_to_go": 10, "distance_to_goal": 60},
	}})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "DATA_QUALITY_ERROR")
}
