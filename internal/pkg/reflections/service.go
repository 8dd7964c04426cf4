package reflections

import (
	"context"
	"io"
	"io/fs"
	"log"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"time"

	"github.com/facebookgo/grace/gracehttp"
	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/pkg/errors"

	"github.com/memora/reflections/internal/pkg/analysis"
	"github.com/memora/reflections/internal/pkg/persistence"
	"github.com/memora/reflections/internal/pkg/status"
	"github.com/memora/reflections/internal/pkg/utils"

	"github.com/airenas/go-app/pkg/goapp"

	"github.com/labstack/echo-contrib/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// Converter normalizes uploaded audio, returns {data, derived file name}
type Converter interface {
	Convert(ctx context.Context, data []byte, fileName string) ([]byte, string, error)
}

// Transcriber provides speech to text functionality
type Transcriber interface {
	Transcribe(ctx context.Context, audio []byte, fileName string) (string, error)
}

// Analyzer turns transcript text into the raw analysis document
type Analyzer interface {
	Analyze(ctx context.Context, text string) (string, error)
}

// Filer stores and loads reflection audio
type Filer interface {
	SaveReflection(ctx context.Context, entryID, name string, data []byte) (string, string, error)
	LoadFile(ctx context.Context, path string) (io.ReadSeekCloser, error)
	Bucket() string
}

// DB saves reflection data to DB
type DB interface {
	InsertEntry(ctx context.Context, e *persistence.Entry) error
	InsertTranscript(ctx context.Context, t *persistence.EntryTranscript) error
	InsertAnalysis(ctx context.Context, entryID string, data *analysis.Result) (*persistence.EntryAnalysis, error)
	UpdateEntryStatus(ctx context.Context, id, status string) error
	LoadEntry(ctx context.Context, id string) (*persistence.Entry, error)
}

// UserResolver maps request credentials to a user ID
type UserResolver interface {
	ResolveUser(ctx context.Context, req *http.Request) (string, error)
}

// Data keeps data required for service work
type Data struct {
	Port              int
	DB                DB
	Filer             Filer
	Converter         Converter
	Transcriber       Transcriber
	Analyzer          Analyzer
	Auth              UserResolver
	MarkFailedOnError bool
	Debug             bool
}

const (
	prmAudio       = "audio"
	prmTitle       = "title"
	prmDescription = "description"
	prmLanguage    = "language"
	prmIsPrivate   = "isPrivate"

	maxTitleLen       = 200
	maxDescriptionLen = 2000
)

// StartWebServer starts echo web service
func StartWebServer(data *Data) error {
	goapp.Log.Info().Msgf("Starting HTTP reflections service at %d", data.Port)
	if err := validate(data); err != nil {
		return err
	}

	portStr := strconv.Itoa(data.Port)

	e := initRoutes(data)

	e.Server.Addr = ":" + portStr
	e.Server.ReadHeaderTimeout = 5 * time.Second
	e.Server.ReadTimeout = 180 * time.Second
	e.Server.WriteTimeout = 300 * time.Second

	gracehttp.SetLogger(log.New(goapp.Log, "", 0))

	return gracehttp.Serve(e.Server)
}

func validate(data *Data) error {
	if data.DB == nil {
		return errors.New("no DB")
	}
	if data.Filer == nil {
		return errors.New("no filer")
	}
	if data.Converter == nil {
		return errors.New("no converter")
	}
	if data.Transcriber == nil {
		return errors.New("no transcriber")
	}
	if data.Analyzer == nil {
		return errors.New("no analyzer")
	}
	if data.Auth == nil {
		return errors.New("no auth resolver")
	}
	return nil
}

var promMdlw *prometheus.Prometheus

func init() {
	promMdlw = prometheus.NewPrometheus("memora_reflections", nil)
}

func initRoutes(data *Data) *echo.Echo {
	e := echo.New()
	e.Use(middleware.Logger())
	promMdlw.Use(e)

	e.POST("/reflections", ingest(data))
	e.GET("/reflections/:id/audio", downloadAudio(data))
	e.HEAD("/reflections/:id/audio", downloadAudio(data))
	e.GET("/live", live(data))

	goapp.Log.Info().Msg("Routes:")
	for _, r := range e.Routes() {
		goapp.Log.Info().Msgf("  %s %s", r.Method, r.Path)
	}
	return e
}

func live(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		return c.JSONBlob(http.StatusOK, []byte(`{"service":"OK"}`))
	}
}

type ingestResult struct {
	Success    bool   `json:"success"`
	Transcript string `json:"transcript,omitempty"`
	Error      string `json:"error,omitempty"`
	Details    string `json:"details,omitempty"`
}

func ingest(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("ingest method")()
		ctx := c.Request().Context()

		user, err := data.Auth.ResolveUser(ctx, c.Request())
		if err != nil {
			if errors.Is(err, utils.ErrUnauthorized) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError)
		}

		form, err := c.MultipartForm()
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "no multipart form data")
		}
		defer cleanFiles(form)
		if err := validateFormParams(form); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}

		audio, fileName, err := takeAudio(form)
		if err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		goapp.Log.Info().Str("user", user).Str("file", goapp.Sanitize(fileName)).
			Int("bytes", len(audio)).Msg("request info")

		converted, convName, err := data.Converter.Convert(ctx, audio, fileName)
		if err != nil {
			return failureResponse(c, err, data.Debug)
		}

		e := &persistence.Entry{ID: uuid.NewString(), UserID: user,
			Created: time.Now(), Updated: time.Now(),
			OriginalFileName: fileName,
			FileSize:         utils.ToSQLInt32Ptr(ptrInt(len(converted))),
			Language:         takeFirst(form.Value[prmLanguage], "en"),
			IsPrivate:        utils.ParamTrue(takeFirst(form.Value[prmIsPrivate], "")),
			Status:           status.Processing.String(),
		}
		e.FilePath, e.PublicURL, err = data.Filer.SaveReflection(ctx, e.ID, convName, converted)
		if err != nil {
			return failureResponse(c, utils.NewErrUpload(err), data.Debug)
		}
		e.Bucket = utils.ToSQLStr(data.Filer.Bucket())
		if err := data.DB.InsertEntry(ctx, e); err != nil {
			return failureResponse(c, utils.NewErrPersistence(err), data.Debug)
		}

		transcript, err := transcribe(ctx, data, e.ID, converted, convName)
		if err != nil {
			return failed(c, data, e.ID, err)
		}

		res, err := data.Analyzer.Analyze(ctx, transcript.Transcript)
		if err != nil {
			return failed(c, data, e.ID, err)
		}
		parsed, err := analysis.Decode([]byte(res))
		if err != nil {
			return failed(c, data, e.ID, utils.NewErrAnalysisParse(err))
		}
		if _, err := data.DB.InsertAnalysis(ctx, e.ID, parsed); err != nil {
			return failed(c, data, e.ID, utils.NewErrPersistence(err))
		}
		if err := data.DB.UpdateEntryStatus(ctx, e.ID, status.Completed.String()); err != nil {
			return failed(c, data, e.ID, utils.NewErrPersistence(err))
		}

		goapp.Log.Info().Str("ID", e.ID).Msg("completed")
		return c.JSON(http.StatusOK, ingestResult{Success: true, Transcript: transcript.Transcript})
	}
}

func transcribe(ctx context.Context, data *Data, entryID string, audio []byte, name string) (*persistence.EntryTranscript, error) {
	if err := data.DB.UpdateEntryStatus(ctx, entryID, status.Transcribing.String()); err != nil {
		return nil, utils.NewErrPersistence(err)
	}
	text, err := data.Transcriber.Transcribe(ctx, audio, name)
	if err != nil {
		return nil, utils.NewErrTranscription(err)
	}
	res := &persistence.EntryTranscript{ID: uuid.NewString(), EntryID: entryID,
		Created: time.Now(), Updated: time.Now(), Transcript: text, Language: "en", Confidence: 1}
	if err := data.DB.InsertTranscript(ctx, res); err != nil {
		return nil, utils.NewErrPersistence(err)
	}
	return res, nil
}

// failed answers with the failure body after trying to move the entry
// to failed status. The status update is best effort.
func failed(c echo.Context, data *Data, entryID string, err error) error {
	if data.MarkFailedOnError {
		if errS := data.DB.UpdateEntryStatus(c.Request().Context(), entryID,
			status.Failed.String()); errS != nil {
			goapp.Log.Error().Err(errS).Str("ID", entryID).Msg("can't mark failed")
		}
	}
	return failureResponse(c, err, data.Debug)
}

func failureResponse(c echo.Context, err error, debug bool) error {
	goapp.Log.Error().Err(err).Send()
	res := ingestResult{Success: false}
	var convErr *utils.ErrAudioConvert
	if errors.As(err, &convErr) {
		res.Error = "Audio conversion failed"
		if debug {
			res.Details = err.Error()
		}
	}
	return c.JSON(http.StatusInternalServerError, res)
}

func downloadAudio(data *Data) func(echo.Context) error {
	return func(c echo.Context) error {
		defer goapp.Estimate("downloadAudio method")()
		ctx := c.Request().Context()

		user, err := data.Auth.ResolveUser(ctx, c.Request())
		if err != nil {
			if errors.Is(err, utils.ErrUnauthorized) {
				return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Unauthorized"})
			}
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		id := c.Param("id")
		if id == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "No ID")
		}
		entry, err := data.DB.LoadEntry(ctx, id)
		if err != nil {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		if entry == nil || entry.Deleted.Valid || entry.UserID != user {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		return serveFile(c, data, entry.FilePath)
	}
}

func serveFile(c echo.Context, data *Data, name string) error {
	goapp.Log.Info().Str("file", name).Msg("loading")
	file, err := data.Filer.LoadFile(c.Request().Context(), name)
	if err != nil {
		if isNotFound(err) {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		goapp.Log.Error().Err(err).Send()
		return echo.NewHTTPError(http.StatusInternalServerError, "Can't get file")
	}
	defer file.Close()
	stGetter, ok := file.(interface{ Stat() (fs.FileInfo, error) })
	if !ok {
		goapp.Log.Error().Msg(`file does implement "interface{ Stat() (fs.FileInfo, error)"`)
		return echo.NewHTTPError(http.StatusInternalServerError, "Can't get file stat")
	}
	stat, err := stGetter.Stat()
	if err != nil {
		if isNotFound(err) {
			goapp.Log.Error().Err(err).Send()
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		goapp.Log.Error().Err(err).Send()
		return echo.NewHTTPError(http.StatusInternalServerError, "Can't get file stat")
	}

	w := c.Response()
	w.Header().Set("Content-Disposition", "attachment; filename="+filepath.Base(stat.Name()))
	http.ServeContent(w, c.Request(), stat.Name(), stat.ModTime(), file)
	return nil
}

func isNotFound(err error) bool {
	var errTest minio.ErrorResponse
	return errors.As(err, &errTest) && errTest.StatusCode == http.StatusNotFound
}

func takeAudio(form *multipart.Form) ([]byte, string, error) {
	fhs := form.File[prmAudio]
	if len(fhs) == 0 {
		return nil, "", errors.Errorf("no form file parameter '%s'", prmAudio)
	}
	if len(fhs) > 1 {
		return nil, "", errors.New("multiple audio files")
	}
	fh := fhs[0]
	ext := filepath.Ext(fh.Filename)
	if !utils.SupportAudioExt(ext) {
		return nil, "", errors.Errorf("unsupported file extension '%s'", ext)
	}
	f, err := fh.Open()
	if err != nil {
		return nil, "", errors.New("can't open audio file")
	}
	defer f.Close()
	res, err := io.ReadAll(f)
	if err != nil {
		return nil, "", errors.New("can't read audio file")
	}
	if len(res) == 0 {
		return nil, "", errors.New("empty audio file")
	}
	return res, fh.Filename, nil
}

func validateFormParams(form *multipart.Form) error {
	allowed := map[string]bool{prmTitle: true, prmDescription: true,
		prmLanguage: true, prmIsPrivate: true}
	for k := range form.Value {
		if !allowed[k] {
			return errors.Errorf("unknown parameter '%s'", k)
		}
	}
	if len(takeFirst(form.Value[prmTitle], "")) > maxTitleLen {
		return errors.Errorf("too long '%s'", prmTitle)
	}
	if len(takeFirst(form.Value[prmDescription], "")) > maxDescriptionLen {
		return errors.Errorf("too long '%s'", prmDescription)
	}
	return nil
}

func takeFirst[K interface{}](a []K, d K) K {
	if len(a) > 0 {
		return a[0]
	}
	return d
}

func ptrInt(i int) *int {
	return &i
}

func cleanFiles(f *multipart.Form) {
	if f != nil {
		_ = f.RemoveAll()
	}
}
