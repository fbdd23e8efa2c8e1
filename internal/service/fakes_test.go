package service

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/qrdesk/qr-admin-api/internal/domain"
	"github.com/qrdesk/qr-admin-api/internal/queue"
	"github.com/qrdesk/qr-admin-api/internal/repository"
)

type fakeQrs struct {
	mu  sync.Mutex
	qrs map[uint]domain.Qr
	seq uint
}

func newFakeQrs(qrs ...domain.Qr) *fakeQrs {
	f := &fakeQrs{qrs: map[uint]domain.Qr{}}
	for _, qr := range qrs {
		f.qrs[qr.ID] = qr
		f.seq = max(f.seq, qr.ID)
	}

	return f
}

func (f *fakeQrs) Create(_ context.Context, qr domain.Qr) (domain.Qr, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	qr.ID = f.seq
	f.qrs[qr.ID] = qr

	return qr, nil
}

func (f *fakeQrs) FindByID(_ context.Context, id uint) (domain.Qr, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	qr, ok := f.qrs[id]
	if !ok {
		return domain.Qr{}, repository.ErrQrNotFound
	}

	return qr, nil
}

func (f *fakeQrs) FindByToken(_ context.Context, token string) (domain.Qr, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, qr := range f.qrs {
		if qr.Token == token {
			return qr, nil
		}
	}

	return domain.Qr{}, repository.ErrQrNotFound
}

func (f *fakeQrs) TokenExists(ctx context.Context, token string) (bool, error) {
	_, err := f.FindByToken(ctx, token)
	return err == nil, nil
}

func (f *fakeQrs) List(_ context.Context, _ domain.QrFilter, page domain.PageRequest) (domain.Page[domain.QrSummary], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var rows []domain.QrSummary
	for _, qr := range f.qrs {
		rows = append(rows, domain.QrSummary{Qr: qr})
	}

	return domain.NewPage(rows, int64(len(rows)), page), nil
}

func (f *fakeQrs) Update(_ context.Context, qr domain.Qr) (domain.Qr, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.qrs[qr.ID]
	if !ok {
		return domain.Qr{}, repository.ErrQrNotFound
	}
	qr.Token = old.Token
	f.qrs[qr.ID] = qr

	return qr, nil
}

func (f *fakeQrs) UpdateToken(_ context.Context, id uint, token string) (domain.Qr, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	qr, ok := f.qrs[id]
	if !ok {
		return domain.Qr{}, repository.ErrQrNotFound
	}
	qr.Token = token
	f.qrs[id] = qr

	return qr, nil
}

func (f *fakeQrs) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.qrs[id]; !ok {
		return repository.ErrQrNotFound
	}
	delete(f.qrs, id)

	return nil
}

type fakeQuestions struct {
	mu        sync.Mutex
	questions map[uint]domain.Question
	seq       uint
}

func newFakeQuestions(questions ...domain.Question) *fakeQuestions {
	f := &fakeQuestions{questions: map[uint]domain.Question{}}
	for _, q := range questions {
		f.questions[q.ID] = q
		f.seq = max(f.seq, q.ID)
	}

	return f
}

func (f *fakeQuestions) FindByQr(_ context.Context, qrID uint, _ domain.QuestionFilter) ([]domain.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Question
	for _, q := range f.questions {
		if q.QrID == qrID {
			out = append(out, q)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (f *fakeQuestions) FindByID(_ context.Context, id uint) (domain.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	q, ok := f.questions[id]
	if !ok {
		return domain.Question{}, repository.ErrQuestionNotFound
	}

	return q, nil
}

func (f *fakeQuestions) Create(_ context.Context, q domain.Question) (domain.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	q.ID = f.seq
	f.questions[q.ID] = q

	return q, nil
}

func (f *fakeQuestions) Update(_ context.Context, q domain.Question) (domain.Question, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.questions[q.ID]; !ok {
		return domain.Question{}, repository.ErrQuestionNotFound
	}
	f.questions[q.ID] = q

	return q, nil
}

func (f *fakeQuestions) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.questions, id)

	return nil
}

type fakeResponses struct {
	mu      sync.Mutex
	created []domain.FormResponse
	seq     uint
}

func (f *fakeResponses) Create(_ context.Context, r domain.FormResponse) (domain.FormResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	r.ID = f.seq
	f.created = append(f.created, r)

	return r, nil
}

func (f *fakeResponses) FindByID(_ context.Context, id uint) (domain.FormResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.created {
		if r.ID == id {
			return r, nil
		}
	}

	return domain.FormResponse{}, repository.ErrFormResponseNotFound
}

func (f *fakeResponses) List(_ context.Context, qrID uint, filter domain.FormResponseFilter, page domain.PageRequest) (domain.Page[domain.FormResponse], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.FormResponse
	for _, r := range f.created {
		if r.QrID != qrID || (filter.Status != "" && string(r.Status) != filter.Status) {
			continue
		}
		out = append(out, r)
	}

	return domain.NewPage(out, int64(len(out)), page), nil
}

func (f *fakeResponses) UpdateStatus(_ context.Context, id uint, status domain.FormResponseStatus) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.created {
		if f.created[i].ID == id {
			f.created[i].Status = status
			return nil
		}
	}

	return repository.ErrFormResponseNotFound
}

func (f *fakeResponses) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, r := range f.created {
		if r.ID == id {
			f.created = append(f.created[:i], f.created[i+1:]...)
			return nil
		}
	}

	return nil
}

type fakePlans struct {
	plans map[uint]domain.Plan
	seq   uint
}

func newFakePlans(plans ...domain.Plan) *fakePlans {
	f := &fakePlans{plans: map[uint]domain.Plan{}}
	for _, p := range plans {
		f.plans[p.ID] = p
		f.seq = max(f.seq, p.ID)
	}

	return f
}

func (f *fakePlans) FindAll(_ context.Context) ([]domain.Plan, error) {
	out := make([]domain.Plan, 0, len(f.plans))
	for _, p := range f.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (f *fakePlans) FindByID(_ context.Context, id uint) (domain.Plan, error) {
	p, ok := f.plans[id]
	if !ok {
		return domain.Plan{}, repository.ErrPlanNotFound
	}

	return p, nil
}

func (f *fakePlans) Create(_ context.Context, p domain.Plan) (domain.Plan, error) {
	f.seq++
	p.ID = f.seq
	f.plans[p.ID] = p

	return p, nil
}

func (f *fakePlans) Update(_ context.Context, p domain.Plan) (domain.Plan, error) {
	f.plans[p.ID] = p

	return p, nil
}

func (f *fakePlans) Delete(_ context.Context, id uint) error {
	delete(f.plans, id)

	return nil
}

// fakeItems keeps items and their stock movements together, mirroring the
// locked balance update of the real store.
type fakeItems struct {
	mu    sync.Mutex
	items map[uint]domain.Item
	txs   []domain.StockTransaction
	seq   uint
}

func newFakeItems(items ...domain.Item) *fakeItems {
	f := &fakeItems{items: map[uint]domain.Item{}}
	for _, i := range items {
		f.items[i.ID] = i
		f.seq = max(f.seq, i.ID)
	}

	return f
}

func (f *fakeItems) Create(_ context.Context, item domain.Item, opening *domain.StockTransaction) (domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	item.ID = f.seq
	f.items[item.ID] = item
	if opening != nil {
		tx := *opening
		tx.ID = uint(len(f.txs) + 1)
		tx.ItemID = item.ID
		tx.QrID = item.QrID
		tx.BalanceAfter = item.BalanceStock
		f.txs = append(f.txs, tx)
	}

	return item, nil
}

func (f *fakeItems) FindByID(_ context.Context, id uint) (domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[id]
	if !ok {
		return domain.Item{}, repository.ErrItemNotFound
	}

	return item, nil
}

func (f *fakeItems) FindByQr(_ context.Context, qrID uint) ([]domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Item
	for _, item := range f.items {
		if item.QrID == qrID {
			out = append(out, item)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })

	return out, nil
}

func (f *fakeItems) List(ctx context.Context, qrID uint, _ domain.ItemFilter, page domain.PageRequest) (domain.Page[domain.Item], error) {
	items, _ := f.FindByQr(ctx, qrID)
	return domain.NewPage(items, int64(len(items)), page), nil
}

func (f *fakeItems) CountByQr(ctx context.Context, qrID uint) (int64, error) {
	items, _ := f.FindByQr(ctx, qrID)
	return int64(len(items)), nil
}

func (f *fakeItems) Update(_ context.Context, item domain.Item) (domain.Item, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	old, ok := f.items[item.ID]
	if !ok {
		return domain.Item{}, repository.ErrItemNotFound
	}
	item.BalanceStock = old.BalanceStock
	f.items[item.ID] = item

	return item, nil
}

func (f *fakeItems) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, id)

	return nil
}

// apply moves the balance of the item under the same lock as the
// movement log.
func (f *fakeItems) apply(m domain.StockTransaction) (domain.StockTransaction, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	item, ok := f.items[m.ItemID]
	if !ok || item.QrID != m.QrID {
		return domain.StockTransaction{}, repository.ErrItemNotFound
	}

	balance := item.BalanceStock.Add(m.Delta())
	if balance.IsNegative() {
		return domain.StockTransaction{}, repository.ErrInsufficientStock
	}
	if balance.GreaterThan(domain.MaxStockAmount) {
		return domain.StockTransaction{}, repository.ErrBalanceTooLarge
	}
	item.BalanceStock = balance
	f.items[item.ID] = item

	m.ID = uint(len(f.txs) + 1)
	m.BalanceAfter = balance
	f.txs = append(f.txs, m)

	return m, nil
}

func (f *fakeItems) balance(id uint) decimal.Decimal {
	f.mu.Lock()
	defer f.mu.Unlock()

	return f.items[id].BalanceStock
}

// fakeStock books movements against the balances held by fakeItems.
type fakeStock struct {
	items *fakeItems
	pins  *fakePins
	// fail, when set, is returned by every movement.
	fail error
}

func (f *fakeStock) Apply(_ context.Context, m domain.StockTransaction) (domain.StockTransaction, error) {
	if f.fail != nil {
		return domain.StockTransaction{}, f.fail
	}

	return f.items.apply(m)
}

// ApplyWithPin leaves the pin untouched when the movement fails.
func (f *fakeStock) ApplyWithPin(ctx context.Context, m domain.StockTransaction, pin string) (domain.StockTransaction, error) {
	if !f.pins.available(m.QrID, pin) {
		return domain.StockTransaction{}, repository.ErrPinUnavailable
	}

	tx, err := f.Apply(ctx, m)
	if err != nil {
		return domain.StockTransaction{}, err
	}
	if ok, _ := f.pins.Consume(ctx, m.QrID, pin); !ok {
		return domain.StockTransaction{}, repository.ErrPinUnavailable
	}

	return tx, nil
}

func (f *fakeStock) List(_ context.Context, qrID uint, filter domain.StockTransactionFilter, page domain.PageRequest) (domain.Page[domain.StockTransaction], error) {
	f.items.mu.Lock()
	defer f.items.mu.Unlock()
	var out []domain.StockTransaction
	for _, tx := range f.items.txs {
		if tx.QrID != qrID || (filter.ItemID != 0 && tx.ItemID != filter.ItemID) {
			continue
		}
		out = append(out, tx)
	}

	return domain.NewPage(out, int64(len(out)), page), nil
}

type fakePins struct {
	mu   sync.Mutex
	pins []domain.QrPin
	// clash makes the next CreateAll fail as a concurrent insert would.
	clash int
}

func (f *fakePins) CreateAll(_ context.Context, qrID uint, numbers []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.clash > 0 {
		f.clash--
		return repository.ErrPinExists
	}
	for _, n := range numbers {
		f.pins = append(f.pins, domain.QrPin{ID: uint(len(f.pins) + 1), QrID: qrID, PinNumber: n})
	}

	return nil
}

func (f *fakePins) ExistingNumbers(_ context.Context, qrID uint, numbers []string) ([]string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, p := range f.pins {
		if p.QrID != qrID {
			continue
		}
		for _, n := range numbers {
			if p.PinNumber == n {
				out = append(out, n)
			}
		}
	}

	return out, nil
}

func (f *fakePins) List(_ context.Context, _ uint, _ domain.PinFilter, page domain.PageRequest) (domain.Page[domain.QrPin], error) {
	return domain.NewPage(f.pins, int64(len(f.pins)), page), nil
}

func (f *fakePins) Each(_ context.Context, qrID uint, size int, fn func([]domain.QrPin) error) error {
	var chunk []domain.QrPin
	for _, p := range f.pins {
		if p.QrID != qrID {
			continue
		}
		chunk = append(chunk, p)
		if len(chunk) == size {
			if err := fn(chunk); err != nil {
				return err
			}
			chunk = nil
		}
	}
	if len(chunk) > 0 {
		return fn(chunk)
	}

	return nil
}

func (f *fakePins) available(qrID uint, pin string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pins {
		if p.QrID == qrID && p.PinNumber == pin && !p.IsUsed {
			return true
		}
	}

	return false
}

func (f *fakePins) used(qrID uint, pin string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.pins {
		if p.QrID == qrID && p.PinNumber == pin {
			return p.IsUsed
		}
	}

	return false
}

func (f *fakePins) Consume(_ context.Context, qrID uint, pin string) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, p := range f.pins {
		if p.QrID == qrID && p.PinNumber == pin && !p.IsUsed {
			f.pins[i].IsUsed = true
			return true, nil
		}
	}

	return false, nil
}

type fakeWishes struct {
	mu     sync.Mutex
	wishes map[uint]domain.Wish
	seq    uint
	// marked records the ids of every MarkDownloaded call.
	marked [][]uint
	// failImagePath is returned by UpdateImagePath when set.
	failImagePath error
}

func newFakeWishes(wishes ...domain.Wish) *fakeWishes {
	f := &fakeWishes{wishes: map[uint]domain.Wish{}}
	for _, w := range wishes {
		f.wishes[w.ID] = w
		f.seq = max(f.seq, w.ID)
	}

	return f
}

func (f *fakeWishes) Create(_ context.Context, w domain.Wish) (domain.Wish, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	w.ID = f.seq
	f.wishes[w.ID] = w

	return w, nil
}

func (f *fakeWishes) FindByID(_ context.Context, id uint) (domain.Wish, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w, ok := f.wishes[id]
	if !ok {
		return domain.Wish{}, repository.ErrWishNotFound
	}

	return w, nil
}

func (f *fakeWishes) List(_ context.Context, _ uint, _ domain.WishFilter, page domain.PageRequest) (domain.Page[domain.Wish], error) {
	return domain.NewPage[domain.Wish](nil, 0, page), nil
}

func (f *fakeWishes) UpdateStatus(_ context.Context, id uint, status domain.WishStatus) (domain.Wish, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	w := f.wishes[id]
	w.Status = status
	f.wishes[id] = w

	return w, nil
}

func (f *fakeWishes) UpdateImagePath(_ context.Context, id uint, path string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failImagePath != nil {
		return f.failImagePath
	}
	w := f.wishes[id]
	w.ImagePath = path
	f.wishes[id] = w

	return nil
}

func (f *fakeWishes) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.wishes, id)

	return nil
}

func (f *fakeWishes) NextExportable(_ context.Context, qrID, afterID uint, limit int) ([]domain.Wish, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Wish
	for _, w := range f.wishes {
		if w.QrID == qrID && w.ID > afterID && w.Status == domain.WishAccepted && !w.IsDownloaded && w.ImagePath != "" {
			out = append(out, w)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (f *fakeWishes) MarkDownloaded(_ context.Context, ids []uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.marked = append(f.marked, append([]uint(nil), ids...))
	for _, id := range ids {
		w := f.wishes[id]
		w.IsDownloaded = true
		f.wishes[id] = w
	}

	return nil
}

type fakeExports struct {
	mu      sync.Mutex
	exports map[uint]domain.WishImageExport
	seq     uint
}

func newFakeExports() *fakeExports {
	return &fakeExports{exports: map[uint]domain.WishImageExport{}}
}

func (f *fakeExports) Create(_ context.Context, e domain.WishImageExport) (domain.WishImageExport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	e.ID = f.seq
	e.CreatedAt = time.Now()
	f.exports[e.ID] = e

	return e, nil
}

func (f *fakeExports) FindByID(_ context.Context, id uint) (domain.WishImageExport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.exports[id]
	if !ok {
		return domain.WishImageExport{}, repository.ErrWishImageExportNotFound
	}

	return e, nil
}

func (f *fakeExports) FindInProgress(_ context.Context, qrID, userID uint) (domain.WishImageExport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, e := range f.exports {
		if e.QrID == qrID && e.UserID == userID && e.IsInProgress() {
			return e, nil
		}
	}

	return domain.WishImageExport{}, repository.ErrWishImageExportNotFound
}

func (f *fakeExports) FindRecent(_ context.Context, qrID, userID uint, limit int) ([]domain.WishImageExport, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.WishImageExport
	for _, e := range f.exports {
		if e.QrID == qrID && e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if len(out) > limit {
		out = out[:limit]
	}

	return out, nil
}

func (f *fakeExports) set(id uint, fn func(e *domain.WishImageExport)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.exports[id]
	if !ok {
		return repository.ErrWishImageExportNotFound
	}
	fn(&e)
	f.exports[id] = e

	return nil
}

func (f *fakeExports) MarkProcessing(_ context.Context, id uint, at time.Time) error {
	return f.set(id, func(e *domain.WishImageExport) {
		e.Status = domain.ExportProcessing
		e.StartedAt = &at
	})
}

func (f *fakeExports) MarkCompleted(_ context.Context, id uint, path string, total int, at time.Time) error {
	return f.set(id, func(e *domain.WishImageExport) {
		e.Status = domain.ExportCompleted
		e.FilePath = path
		e.TotalImages = total
		e.FinishedAt = &at
	})
}

func (f *fakeExports) MarkFailed(_ context.Context, id uint, message string, at time.Time) error {
	return f.set(id, func(e *domain.WishImageExport) {
		e.Status = domain.ExportFailed
		e.FilePath = ""
		e.TotalImages = 0
		e.ErrorMessage = message
		e.FinishedAt = &at
	})
}

type fakeNotifications struct {
	mu    sync.Mutex
	items []domain.Notification
}

func (f *fakeNotifications) Create(_ context.Context, n domain.Notification) (domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n.CreatedAt = time.Now()
	f.items = append(f.items, n)

	return n, nil
}

func (f *fakeNotifications) FindByID(_ context.Context, id string) (domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, n := range f.items {
		if n.ID == id {
			return n, nil
		}
	}

	return domain.Notification{}, repository.ErrNotificationNotFound
}

func (f *fakeNotifications) FindLatest(_ context.Context, userID uint, unreadOnly bool, limit int) ([]domain.Notification, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.Notification
	for i := len(f.items) - 1; i >= 0 && len(out) < limit; i-- {
		n := f.items[i]
		if n.UserID != userID || (unreadOnly && n.ReadAt != nil) {
			continue
		}
		out = append(out, n)
	}

	return out, nil
}

func (f *fakeNotifications) CountUnread(_ context.Context, userID uint) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var count int64
	for _, n := range f.items {
		if n.UserID == userID && n.ReadAt == nil {
			count++
		}
	}

	return count, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id string, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].ID == id {
			f.items[i].ReadAt = &at
		}
	}

	return nil
}

func (f *fakeNotifications) MarkAllRead(_ context.Context, userID uint, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.items {
		if f.items[i].UserID == userID && f.items[i].ReadAt == nil {
			f.items[i].ReadAt = &at
		}
	}

	return nil
}

type fakeBatches struct {
	mu       sync.Mutex
	batches  map[uint]domain.QrBatch
	items    map[uint][]domain.QrBatchItem
	progress []domain.BatchProgress
	seq      uint
}

func newFakeBatches() *fakeBatches {
	return &fakeBatches{batches: map[uint]domain.QrBatch{}, items: map[uint][]domain.QrBatchItem{}}
}

func (f *fakeBatches) Create(_ context.Context, b domain.QrBatch) (domain.QrBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	b.ID = f.seq
	f.batches[b.ID] = b

	return b, nil
}

func (f *fakeBatches) FindByID(_ context.Context, id uint) (domain.QrBatch, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.batches[id]
	if !ok {
		return domain.QrBatch{}, repository.ErrQrBatchNotFound
	}

	return b, nil
}

func (f *fakeBatches) FindLatest(ctx context.Context) (domain.QrBatch, error) {
	return f.FindByID(ctx, f.seq)
}

func (f *fakeBatches) List(_ context.Context, page domain.PageRequest) (domain.Page[domain.QrBatch], error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.QrBatch
	for _, b := range f.batches {
		out = append(out, b)
	}

	return domain.NewPage(out, int64(len(out)), page), nil
}

func (f *fakeBatches) set(id uint, fn func(b *domain.QrBatch)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	b, ok := f.batches[id]
	if !ok {
		return repository.ErrQrBatchNotFound
	}
	fn(&b)
	f.batches[id] = b

	return nil
}

func (f *fakeBatches) Start(_ context.Context, id uint, total int, at time.Time) error {
	return f.set(id, func(b *domain.QrBatch) {
		b.Status = domain.BatchProcessing
		b.ProgressTotal = total
		b.StatusMessage = "Starting"
		b.StartedAt = &at
	})
}

func (f *fakeBatches) UpdateProgress(_ context.Context, id uint, p domain.BatchProgress) error {
	f.mu.Lock()
	f.progress = append(f.progress, p)
	f.mu.Unlock()

	return f.set(id, func(b *domain.QrBatch) {
		b.ProgressCurrent = p.Current
		b.ProgressPercent = p.Percent
		b.StatusMessage = p.Message
	})
}

func (f *fakeBatches) Complete(_ context.Context, id uint, path string, total int, at time.Time) error {
	return f.set(id, func(b *domain.QrBatch) {
		b.Status = domain.BatchCompleted
		b.PDFPath = path
		b.ProgressCurrent = total
		b.ProgressPercent = 100
		b.StatusMessage = "Completed"
		b.FinishedAt = &at
	})
}

func (f *fakeBatches) Fail(_ context.Context, id uint, message string, at time.Time) error {
	return f.set(id, func(b *domain.QrBatch) {
		b.Status = domain.BatchFailed
		b.StatusMessage = message
		b.FinishedAt = &at
	})
}

func (f *fakeBatches) DeleteItems(_ context.Context, batchID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.items, batchID)

	return nil
}

func (f *fakeBatches) CreateItems(_ context.Context, items []domain.QrBatchItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range items {
		f.items[item.QrBatchID] = append(f.items[item.QrBatchID], item)
	}

	return nil
}

func (f *fakeBatches) ItemsInRange(_ context.Context, batchID uint, from, to int) ([]domain.QrBatchItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.QrBatchItem
	for _, item := range f.items[batchID] {
		if item.Sequence >= from && item.Sequence <= to {
			out = append(out, item)
		}
	}

	return out, nil
}

type fakeJobs struct {
	mu   sync.Mutex
	jobs []queue.Job
	err  error
}

func (f *fakeJobs) Enqueue(_ context.Context, job queue.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)

	return nil
}

type sentNotification struct {
	UserID uint
	Kind   string
	Data   map[string]interface{}
}

type fakeNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

func (f *fakeNotifier) Notify(_ context.Context, userID uint, kind string, data map[string]interface{}) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, sentNotification{UserID: userID, Kind: kind, Data: data})

	return nil
}

type fakeAdmins []domain.User

func (f fakeAdmins) FindAdmins(context.Context) ([]domain.User, error) {
	return f, nil
}

type fakeUsers struct {
	mu    sync.Mutex
	users map[uint]domain.User
	seq   uint
}

func newFakeUsers(users ...domain.User) *fakeUsers {
	f := &fakeUsers{users: map[uint]domain.User{}}
	for _, u := range users {
		f.users[u.ID] = u
		f.seq = max(f.seq, u.ID)
	}

	return f
}

func (f *fakeUsers) Create(_ context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	u.ID = f.seq
	f.users[u.ID] = u

	return u, nil
}

func (f *fakeUsers) Update(_ context.Context, u domain.User) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.users[u.ID]; !ok {
		return domain.User{}, repository.ErrUserNotFound
	}
	f.users[u.ID] = u

	return u, nil
}

func (f *fakeUsers) Delete(_ context.Context, id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.users, id)

	return nil
}

func (f *fakeUsers) FindByID(_ context.Context, id uint) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	u, ok := f.users[id]
	if !ok {
		return domain.User{}, repository.ErrUserNotFound
	}

	return u, nil
}

func (f *fakeUsers) FindByEmail(_ context.Context, email string) (domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if strings.EqualFold(u.Email, email) {
			return u, nil
		}
	}

	return domain.User{}, repository.ErrUserNotFound
}

func (f *fakeUsers) FindAdmins(context.Context) ([]domain.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []domain.User
	for _, u := range f.users {
		if u.IsAdmin() {
			out = append(out, u)
		}
	}

	return out, nil
}
