package node

import (
	"context"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/lioia/corpus-pagerank/pkg/graph"
	"github.com/lioia/corpus-pagerank/pkg/utils"
	"github.com/sirupsen/logrus"
	"golang.org/x/xerrors"
)

// maxEdgeListSize bounds the body accepted by POST /rank/edges.
const maxEdgeListSize = 32 << 20

// API exposes the ranker over HTTP:
//
//	GET  /health      liveness probe
//	POST /rank        JSON Request, JSON Response
//	POST /rank/edges  edge-list body, parameters as query string
type API struct {
	echo   *echo.Echo
	limits Limits
	logger *logrus.Entry
}

func NewAPI(limits Limits, logger *logrus.Entry) *API {
	if logger == nil {
		logger = utils.DiscardLogger()
	}
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	a := &API{echo: e, limits: limits, logger: logger}
	e.GET("/health", a.health)
	e.POST("/rank", a.rank)
	e.POST("/rank/edges", a.rankEdges)
	return a
}

// Handler returns the HTTP handler serving the API.
func (a *API) Handler() http.Handler { return a.echo }

// Start listens on address until Shutdown is called.
func (a *API) Start(address string) error {
	a.logger.WithField("address", address).Info("starting HTTP API")
	if err := a.echo.Start(address); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func (a *API) Shutdown(ctx context.Context) error {
	return a.echo.Shutdown(ctx)
}

func (a *API) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (a *API) rank(c echo.Context) error {
	var req Request
	if err := c.Bind(&req); err != nil {
		return err
	}
	res, err := Compute(req, a.limits, a.logger)
	if err != nil {
		return a.fail(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (a *API) rankEdges(c echo.Context) error {
	var req Request
	var damping, tolerance float64
	var samples, maxSweeps int
	err := echo.QueryParamsBinder(c).
		String("id", &req.ID).
		String("method", &req.Method).
		Float64("damping", &damping).
		Int("samples", &samples).
		Float64("tolerance", &tolerance).
		Int("max_sweeps", &maxSweeps).
		Int64("seed", &req.Seed).
		Int("runs", &req.Runs).
		BindError()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	// Only parameters present in the query override the defaults
	params := c.QueryParams()
	if params.Has("damping") {
		req.Damping = &damping
	}
	if params.Has("samples") {
		req.Samples = &samples
	}
	if params.Has("tolerance") {
		req.Tolerance = &tolerance
	}
	if params.Has("max_sweeps") {
		req.MaxSweeps = &maxSweeps
	}
	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxEdgeListSize))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	corpus, err := graph.LoadBytes(body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	res, err := ComputeCorpus(req, corpus, a.limits, a.logger)
	if err != nil {
		return a.fail(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (a *API) fail(err error) error {
	if xerrors.Is(err, ErrBadRequest) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	a.logger.WithError(err).Warn("ranking failed")
	return echo.NewHTTPError(http.StatusUnprocessableEntity, err.Error())
}
