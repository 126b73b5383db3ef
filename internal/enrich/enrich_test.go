package enrich

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/prospecta/leads-cli/internal/model"
)

func serveHTML(t *testing.T, html string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(html))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func newTestEnricher() *Enricher {
	return NewEnricher(0)
}

func TestEnrich_NoWebsitePassthrough(t *testing.T) {
	b := model.Business{Name: "Padaria Sem Site", Phone: "(11) 3333-4444"}

	lead := newTestEnricher().Enrich(context.Background(), b)

	assert.Equal(t, b, lead.Business)
	assert.Empty(t, lead.Email)
	assert.Empty(t, lead.SocialLinks)
}

func TestEnrich_FetchFailureReturnsInputUnchanged(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	b := model.Business{Name: "Padaria Fora do Ar", Website: srv.URL}
	lead := newTestEnricher().Enrich(context.Background(), b)

	assert.Equal(t, b, lead.Business)
	assert.Empty(t, lead.Email)
	assert.Empty(t, lead.Description)
}

func TestEnrich_NeverRemovesAcquisitionFields(t *testing.T) {
	srv := serveHTML(t, `<html><body>
		<p>Fale conosco: contato@padaria.com.br ou (41) 99888-7766</p>
	</body></html>`)

	b := model.Business{
		Name:        "Padaria Completa",
		Address:     "Rua A, 1",
		Phone:       "(41) 3333-0000",
		Website:     srv.URL,
		Category:    "bakery",
		Rating:      4.5,
		RatingCount: 80,
		Location:    &model.Coordinate{Lat: -25.4, Lng: -49.2},
	}

	lead := newTestEnricher().Enrich(context.Background(), b)

	assert.Equal(t, b, lead.Business)
	assert.Equal(t, "contato@padaria.com.br", lead.Email)
}

func TestEnrich_EmailFromTextAndMailto(t *testing.T) {
	srv := serveHTML(t, `<html><body>
		<p>Escreva para vendas@loja.com.br</p>
		<a href="mailto:suporte@loja.com.br">Suporte</a>
	</body></html>`)

	lead := newTestEnricher().Enrich(context.Background(), model.Business{Name: "Loja", Website: srv.URL})

	assert.Equal(t, "vendas@loja.com.br", lead.Email)
	assert.ElementsMatch(t, []string{"vendas@loja.com.br", "suporte@loja.com.br"}, lead.AdditionalEmails)
}

func TestEnrich_MissingTLDDoesNotSetEmail(t *testing.T) {
	srv := serveHTML(t, `<html><body><p>contato: foo@bar</p></body></html>`)

	lead := newTestEnricher().Enrich(context.Background(), model.Business{Name: "X", Website: srv.URL})

	assert.Empty(t, lead.Email)
	assert.Empty(t, lead.AdditionalEmails)
}

func TestEnrich_PlaceholderEmailsFiltered(t *testing.T) {
	srv := serveHTML(t, `<html><body>
		<p>test@test.com</p>
		<a href="mailto:example@example.com">mail</a>
		<a href="mailto:ADMIN@DOMAIN.COM">mail</a>
	</body></html>`)

	lead := newTestEnricher().Enrich(context.Background(), model.Business{Name: "X", Website: srv.URL})

	assert.Empty(t, lead.Email)
	assert.Empty(t, lead.AdditionalEmails)
}

func TestEnrich_SocialLinksFirstMatchWins(t *testing.T) {
	srv := serveHTML(t, `<html><body>
		<a href="https://www.facebook.com/padaria.central">fb</a>
		<a href="https://facebook.com/outra.pagina">fb2</a>
		<a href="instagram.com/padariacentral">ig</a>
		<a href="https://wa.me/5541998887766">zap</a>
	</body></html>`)

	lead := newTestEnricher().Enrich(context.Background(), model.Business{Name: "X", Website: srv.URL})

	require.NotNil(t, lead.SocialLinks)
	assert.Equal(t, "https://www.facebook.com/padaria.central", lead.SocialLinks["facebook"])
	// Schemeless links are normalized during validation.
	assert.Equal(t, "https://instagram.com/padariacentral", lead.SocialLinks["instagram"])
	assert.Equal(t, "https://wa.me/5541998887766", lead.SocialLinks["whatsapp"])
	assert.NotContains(t, lead.SocialLinks, "linkedin")
}

func TestEnrich_DescriptionPrefersMetaTag(t *testing.T) {
	srv := serveHTML(t, `<html><head>
		<meta name="description" content="A melhor padaria de Curitiba desde 1952.">
	</head><body><p>Outro texto.</p></body></html>`)

	lead := newTestEnricher().Enrich(context.Background(), model.Business{Name: "X", Website: srv.URL})

	assert.Equal(t, "A melhor padaria de Curitiba desde 1952.", lead.Description)
}

func TestEnrich_DescriptionKeepsApostropheInMetaContent(t *testing.T) {
	srv := serveHTML(t, `<html><head>
		<meta name="description" content="It's Curitiba's best bakery.">
	</head><body><p>Outro texto.</p></body></html>`)

	lead := newTestEnricher().Enrich(context.Background(), model.Business{Name: "X", Website: srv.URL})

	assert.Equal(t, "It's Curitiba's best bakery.", lead.Description)
}

func TestEnrich_DescriptionFromSingleQuotedMeta(t *testing.T) {
	srv := serveHTML(t, `<html><head>
		<meta content='Padaria "Central" no coração da cidade.' name='description'>
	</head><body></body></html>`)

	lead := newTestEnricher().Enrich(context.Background(), model.Business{Name: "X", Website: srv.URL})

	assert.Equal(t, `Padaria "Central" no coração da cidade.`, lead.Description)
}

func TestEnrich_DescriptionFallsBackToAboutSection(t *testing.T) {
	srv := serveHTML(t, `<html><body>
		<h2>Sobre nós</h2>
		<p>Somos uma padaria familiar fundada em 1952 no centro de Curitiba.</p>
	</body></html>`)

	lead := newTestEnricher().Enrich(context.Background(), model.Business{Name: "X", Website: srv.URL})

	assert.Contains(t, lead.Description, "padaria familiar")
}

func TestEnrich_DescriptionFallsBackToFirstParagraph(t *testing.T) {
	srv := serveHTML(t, `<html><body>
		<p>Primeiro parágrafo da página, sem meta e sem seção institucional.</p>
		<p>Segundo parágrafo.</p>
	</body></html>`)

	lead := newTestEnricher().Enrich(context.Background(), model.Business{Name: "X", Website: srv.URL})

	assert.Equal(t, "Primeiro parágrafo da página, sem meta e sem seção institucional.", lead.Description)
}

func TestEnrich_PhonesNormalizedAndLengthChecked(t *testing.T) {
	srv := serveHTML(t, `<html><body>
		<p>Televendas: (11) 99999-8888</p>
		<p>Fixo: 11 3222-1111</p>
		<p>Internacional: +55 11 98888-7777</p>
	</body></html>`)

	lead := newTestEnricher().Enrich(context.Background(), model.Business{Name: "X", Website: srv.URL})

	require.NotEmpty(t, lead.AdditionalPhones)
	for _, p := range lead.AdditionalPhones {
		assert.NotContains(t, p, " ")
		assert.GreaterOrEqual(t, len(p), 10)
	}
	assert.Contains(t, lead.AdditionalPhones, "(11)99999-8888")
	assert.Contains(t, lead.AdditionalPhones, "+551198888-7777")
}

func TestEnrich_RegistrationID(t *testing.T) {
	srv := serveHTML(t, `<html><body><footer>CNPJ: 12.345.678/0001-90</footer></body></html>`)

	lead := newTestEnricher().Enrich(context.Background(), model.Business{Name: "X", Website: srv.URL})

	assert.Equal(t, "12.345.678/0001-90", lead.RegistrationID)
}

func TestEnrich_FoundingYearEitherPhrase(t *testing.T) {
	tests := []struct {
		name string
		html string
		want string
	}{
		{"desde", `<p>Tradição desde 1952.</p>`, "1952"},
		{"fundada em", `<p>Empresa fundada em 1987.</p>`, "1987"},
		{"fundado em", `<p>Negócio fundado em 2003.</p>`, "2003"},
		{"absent", `<p>Nada sobre fundação.</p>`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := serveHTML(t, "<html><body>"+tt.html+"</body></html>")
			lead := newTestEnricher().Enrich(context.Background(), model.Business{Name: "X", Website: srv.URL})
			assert.Equal(t, tt.want, lead.FoundingYear)
		})
	}
}

func TestEnrich_ScriptContentIgnored(t *testing.T) {
	srv := serveHTML(t, `<html><body>
		<script>var fake = "spam@tracker.io";</script>
		<p>contato@real.com.br</p>
	</body></html>`)

	lead := newTestEnricher().Enrich(context.Background(), model.Business{Name: "X", Website: srv.URL})

	assert.Equal(t, "contato@real.com.br", lead.Email)
	assert.NotContains(t, lead.AdditionalEmails, "spam@tracker.io")
}
