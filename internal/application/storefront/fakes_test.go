package storefront

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/Dradcheenko/weblarek/internal/domain/catalog"
	"github.com/Dradcheenko/weblarek/internal/domain/customer"
	"github.com/Dradcheenko/weblarek/internal/domain/order"
)

// View fakes are only touched on the loop; tests read them through harness.do.

type fakeModal struct {
	content Content
	open    bool
	opened  int
}

func (m *fakeModal) Open(content Content) {
	m.content = content
	m.open = true
	m.opened++
}

func (m *fakeModal) Close() {
	m.content = nil
	m.open = false
}

func (m *fakeModal) kind() ContentKind {
	if m.content == nil {
		return ""
	}
	return m.content.ContentKind()
}

type fakeHeader struct {
	count int
}

func (h *fakeHeader) SetCounter(count int) {
	h.count = count
}

type fakeGallery struct {
	cards []Card
}

func (g *fakeGallery) SetCards(cards []Card) {
	g.cards = cards
}

type fakeCard struct {
	id     string
	index  int
	action Action
}

func (c *fakeCard) ProductID() string {
	return c.id
}

type fakeCards struct{}

func (fakeCards) CatalogCard(product catalog.Product, onSelect Action) Card {
	return &fakeCard{id: product.ID, action: onSelect}
}

func (fakeCards) BasketCard(product catalog.Product, index int, onDelete Action) Card {
	return &fakeCard{id: product.ID, index: index, action: onDelete}
}

type fakePreview struct {
	product  catalog.Product
	label    string
	disabled bool
	toggle   Action
}

func (p *fakePreview) ContentKind() ContentKind { return ContentPreview }

func (p *fakePreview) Render(product catalog.Product) {
	p.product = product
}

func (p *fakePreview) SetButton(label string, disabled bool) {
	p.label = label
	p.disabled = disabled
}

func (p *fakePreview) OnToggle(action Action) {
	p.toggle = action
}

type fakeBasket struct {
	items    []Card
	total    decimal.Decimal
	disabled bool
}

func (b *fakeBasket) ContentKind() ContentKind { return ContentBasket }

func (b *fakeBasket) SetItems(cards []Card) {
	b.items = cards
}

func (b *fakeBasket) SetTotal(total decimal.Decimal) {
	b.total = total
}

func (b *fakeBasket) SetSubmitDisabled(disabled bool) {
	b.disabled = disabled
}

type fakeForm struct {
	kind        ContentKind
	fields      []customer.Field
	applied     customer.Buyer
	errors      map[customer.Field]string
	disabled    bool
	formError   string
	validations int
}

func newOrderForm() *fakeForm {
	return &fakeForm{kind: ContentOrder, fields: []customer.Field{customer.FieldPayment, customer.FieldAddress}}
}

func newContactsForm() *fakeForm {
	return &fakeForm{kind: ContentContacts, fields: []customer.Field{customer.FieldEmail, customer.FieldPhone}}
}

func (f *fakeForm) ContentKind() ContentKind { return f.kind }

func (f *fakeForm) Fields() []customer.Field { return f.fields }

func (f *fakeForm) ApplyBuyerFields(buyer customer.Buyer) {
	f.applied = buyer
}

func (f *fakeForm) SetErrors(errors map[customer.Field]string) {
	f.errors = errors
	f.validations++
}

func (f *fakeForm) SetSubmitDisabled(disabled bool) {
	f.disabled = disabled
}

func (f *fakeForm) SetFormError(message string) {
	f.formError = message
}

type fakeSuccess struct {
	total decimal.Decimal
}

func (s *fakeSuccess) ContentKind() ContentKind { return ContentSuccess }

func (s *fakeSuccess) SetTotal(total decimal.Decimal) {
	s.total = total
}

type fakeSource struct {
	list catalog.ProductList
	err  error
}

func (s *fakeSource) FetchProductList(context.Context) (catalog.ProductList, error) {
	return s.list, s.err
}

type fakeGateway struct {
	mu       sync.Mutex
	requests []order.Request
	result   order.Result
	err      error
	release  chan struct{}
}

func (g *fakeGateway) SubmitOrder(_ context.Context, req order.Request) (order.Result, error) {
	g.mu.Lock()
	g.requests = append(g.requests, req)
	release := g.release
	result, err := g.result, g.err
	g.mu.Unlock()

	if release != nil {
		<-release
	}
	return result, err
}

func (g *fakeGateway) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.requests)
}

func (g *fakeGateway) lastRequest() order.Request {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.requests[len(g.requests)-1]
}

type fakeOrderRecorder struct {
	mu      sync.Mutex
	results []string
}

func (r *fakeOrderRecorder) RecordOrder(_ context.Context, result string, _ float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.results = append(r.results, result)
}

func (r *fakeOrderRecorder) recorded() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.results...)
}
