package bootstrap

import (
	"context"
	"fmt"
	"os"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/hashicorp/go-hclog"

	curriculuminadapter "tutor/internal/modules/curriculum/adapter/in"
	curriculumoutadapter "tutor/internal/modules/curriculum/adapter/out"
	curriculumservice "tutor/internal/modules/curriculum/service"
	curriculumusecase "tutor/internal/modules/curriculum/usecase"
	historyinadapter "tutor/internal/modules/history/adapter/in"
	historyoutadapter "tutor/internal/modules/history/adapter/out"
	historyservice "tutor/internal/modules/history/service"
	historyusecase "tutor/internal/modules/history/usecase"
	providerinadapter "tutor/internal/modules/provider/adapter/in"
	provideroutadapter "tutor/internal/modules/provider/adapter/out"
	providerdomain "tutor/internal/modules/provider/domain"
	providerin "tutor/internal/modules/provider/port/in"
	providerservice "tutor/internal/modules/provider/service"
	providerusecase "tutor/internal/modules/provider/usecase"
	sessioninadapter "tutor/internal/modules/session/adapter/in"
	sessionoutadapter "tutor/internal/modules/session/adapter/out"
	sessiondomain "tutor/internal/modules/session/domain"
	sessionout "tutor/internal/modules/session/port/out"
	sessionservice "tutor/internal/modules/session/service"
	sessionusecase "tutor/internal/modules/session/usecase"
	"tutor/internal/platform/clock"
	"tutor/internal/platform/config"
	"tutor/internal/platform/id"
	uiapp "tutor/internal/ui/app"
)

type App struct {
	PlanCLI     curriculuminadapter.CLIHandler
	SessionCLI  sessioninadapter.CLIHandler
	HistoryCLI  historyinadapter.CLIHandler
	ProviderCLI providerinadapter.CLIHandler
}

func New(cfg config.Config) (*App, error) {
	clk := clock.SystemClock{}
	ids := id.RandomHex{}
	logger := hclog.New(&hclog.LoggerOptions{
		Name:   "tutor",
		Level:  hclog.LevelFromString(cfg.LogLevel),
		Output: os.Stderr,
	})

	planStore := curriculumoutadapter.NewYAMLPlanStore(cfg.PlansPath)
	planProjector, err := curriculumoutadapter.NewSQLitePlanProjector(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new plan projector: %w", err)
	}
	curriculumUC := curriculumusecase.NewInteractor(curriculumservice.NewPlanService(planStore), planProjector)

	providerUC := providerusecase.NewInteractor(providerservice.NewProviderService(
		provideroutadapter.NewFileManifestStore(cfg.WorkPath),
		provideroutadapter.NewGRPCHost(),
	))

	recordStore := historyoutadapter.NewNoteRecordStore(cfg.ReportsPath)
	recordProjector, err := historyoutadapter.NewSQLiteRecordProjector(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new record projector: %w", err)
	}
	historyUC := historyusecase.NewInteractor(historyservice.NewRecordService(recordStore), recordProjector, logger)

	policy := sessiondomain.Policy{
		AcceptThreshold:        cfg.Policy.AcceptThreshold,
		PassThreshold:          cfg.Policy.PassThreshold,
		MaxContentRetries:      cfg.Policy.MaxContentRetries,
		MaxRemediationAttempts: cfg.Policy.MaxRemediationAttempts,
		MinQuestions:           cfg.Policy.MinQuestions,
		MaxQuestions:           cfg.Policy.MaxQuestions,
		PerQuestionCutoff:      cfg.Policy.PerQuestionCutoff,
		CollaboratorTimeout:    time.Duration(cfg.Policy.CollaboratorTimeoutSec) * time.Second,
		RegenerateOnEmpty:      cfg.Policy.RegenerateOnEmpty,
	}

	indexer := sessionoutadapter.NewChunkIndexer(cfg.ContextPath)
	collaborators := buildCollaborators(providerUC, indexer, cfg, policy, ids, clk, logger)

	engine, err := sessionservice.NewEngineService(
		collaborators.collector,
		collaborators.scorer,
		indexer,
		collaborators.generator,
		collaborators.grader,
		collaborators.explainer,
		policy,
		clk,
	)
	if err != nil {
		return nil, err
	}

	auditProjector, err := sessionoutadapter.NewSQLiteAuditProjector(cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("new audit projector: %w", err)
	}
	sessionUC := sessionusecase.NewInteractor(
		engine,
		sessionoutadapter.NewFileStateStore(cfg.WorkPath),
		auditProjector,
		sessionoutadapter.NewHistoryRecorderAdapter(historyUC, clk),
		curriculumUC,
		ids,
		clk,
		logger,
	)

	return &App{
		PlanCLI:     curriculuminadapter.NewCLIHandler(curriculumUC),
		SessionCLI:  sessioninadapter.NewCLIHandler(sessionUC),
		HistoryCLI:  historyinadapter.NewCLIHandler(historyUC),
		ProviderCLI: providerinadapter.NewCLIHandler(providerUC),
	}, nil
}

type collaboratorSet struct {
	collector sessionout.ContentCollector
	scorer    sessionout.RelevanceScorer
	generator sessionout.AssessmentGenerator
	grader    sessionout.AnswerGrader
	explainer sessionout.RemediationExplainer
}

// buildCollaborators picks, per role, between a provider-backed collaborator
// and the built-in heuristic. Content collection always runs locally; a
// search endpoint, when configured, broadens what the notes yield.
func buildCollaborators(
	providers providerin.Usecase,
	indexer sessionout.ContentIndexer,
	cfg config.Config,
	policy sessiondomain.Policy,
	ids id.Generator,
	clk clock.Clock,
	logger hclog.Logger,
) collaboratorSet {
	hasRole := func(role providerdomain.Role) bool {
		ok, err := providers.HasRole(context.Background(), string(role))
		if err != nil {
			logger.Warn("provider role check failed, using heuristic", "role", role, "error", err)
			return false
		}
		return ok
	}

	var collector sessionout.ContentCollector = sessionoutadapter.NewNotesCollector(cfg.NotesPath, clk)
	if cfg.Search.Endpoint != "" {
		search := sessionoutadapter.NewSearchCollector(cfg.Search.Endpoint, cfg.Search.APIKey, cfg.Search.MaxResults, nil, clk)
		collector = sessionoutadapter.NewCompositeCollector(collector, search)
	}

	set := collaboratorSet{
		collector: collector,
		scorer:    sessionoutadapter.NewKeywordScorer(),
		generator: sessionoutadapter.NewTemplateGenerator(ids),
		grader:    sessionoutadapter.NewKeywordGrader(indexer, policy.PerQuestionCutoff),
		explainer: sessionoutadapter.NewTemplateExplainer(indexer),
	}
	if hasRole(providerdomain.RoleScorer) {
		set.scorer = sessionoutadapter.NewProviderScorer(providers)
	}
	if hasRole(providerdomain.RoleGenerator) {
		set.generator = sessionoutadapter.NewProviderGenerator(providers, indexer)
	}
	if hasRole(providerdomain.RoleGrader) {
		set.grader = sessionoutadapter.NewProviderGrader(providers, indexer)
	}
	if hasRole(providerdomain.RoleExplainer) {
		set.explainer = sessionoutadapter.NewProviderExplainer(providers, indexer)
	}
	return set
}

func RunTUI(app *App) error {
	model := uiapp.NewModel(app.PlanCLI, app.SessionCLI, app.HistoryCLI, app.ProviderCLI)
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err := program.Run()
	return err
}
