package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Generation result labels
const (
	ResultOK            = "ok"
	ResultNoMeals       = "no_meals"
	ResultNoIngredients = "no_ingredients"
	ResultStoreError    = "store_error"
)

var (
	// GenerationsTotal 購物清單產生次數，依結果分類
	GenerationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipe_planner_shopping_generations_total",
		Help: "Total number of shopping list generations by result",
	}, []string{"result"})

	// IngredientsDropped 正規化時被略過的食材數
	IngredientsDropped = promauto.NewCounter(prometheus.CounterOpts{
		Name: "recipe_planner_ingredients_dropped_total",
		Help: "Total number of ingredient entries dropped during normalization",
	})

	// ListMutations 清單修改操作次數
	ListMutations = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "recipe_planner_list_mutations_total",
		Help: "Total number of shopping list mutations by operation",
	}, []string{"op"})

	// RequestDuration HTTP 請求延遲
	RequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "recipe_planner_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: []float64{0.005, 0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
	}, []string{"method", "route", "status"})
)

// Handler 回傳 /metrics 的 HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
