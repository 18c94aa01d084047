package prospecting

type fakeAttrs struct {
	ints map[string]int
	strs map[string]string
}

func newFakeAttrs() *fakeAttrs {
	return &fakeAttrs{ints: map[string]int{}, strs: map[string]string{}}
}

func (a *fakeAttrs) GetInt(key string, def int) int {
	if v, ok := a.ints[key]; ok {
		return v
	}
	return def
}
func (a *fakeAttrs) SetInt(key string, v int) { a.ints[key] = v }
func (a *fakeAttrs) GetString(key string, def string) string {
	if v, ok := a.strs[key]; ok {
		return v
	}
	return def
}
func (a *fakeAttrs) SetString(key string, v string) { a.strs[key] = v }

type fakeItem struct {
	code    string
	variant map[string]string
	attrs   *fakeAttrs
}

func newFakeItem(code string, variant map[string]string) *fakeItem {
	return &fakeItem{code: code, variant: variant, attrs: newFakeAttrs()}
}

func (i *fakeItem) Code() string { return i.code }
func (i *fakeItem) Variant(key string) (string, bool) {
	v, ok := i.variant[key]
	return v, ok
}
func (i *fakeItem) Attributes() ItemAttributeStore { return i.attrs }

type fakeWorld struct {
	cells   map[Pos]CellDescriptor
	players map[string]PlayerIdentity
	visits  map[Pos]int
	reads   int
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		cells:   map[Pos]CellDescriptor{},
		players: map[string]PlayerIdentity{},
		visits:  map[Pos]int{},
	}
}

func (w *fakeWorld) CellDescriptor(p Pos) CellDescriptor {
	w.reads++
	w.visits[p]++
	return w.cells[p]
}

func (w *fakeWorld) ResolvePlayer(entityID string) (PlayerIdentity, bool) {
	p, ok := w.players[entityID]
	return p, ok
}

func oreCell(typ string) CellDescriptor {
	return CellDescriptor{
		Code:     "ore-poor-" + typ + "-granite",
		Material: MaterialOre,
		Variant:  map[string]string{"grade": "poor", "type": typ, "rock": "granite"},
	}
}

type recordingEffects struct{ got []ParticleSpec }

func (e *recordingEffects) Emit(p ParticleSpec) { e.got = append(e.got, p) }

type sentNote struct {
	player  PlayerIdentity
	msg     string
	channel Channel
}

type recordingNotify struct{ got []sentNote }

func (n *recordingNotify) Send(player PlayerIdentity, msg string, channel Channel) {
	n.got = append(n.got, sentNote{player: player, msg: msg, channel: channel})
}

type recordingDamager struct {
	entity string
	amount int
	calls  int
}

func (d *recordingDamager) DamageItem(entityID string, item ItemRef, amount int) {
	d.entity = entityID
	d.amount += amount
	d.calls++
}

type fixedRand struct{ n int }

func (r fixedRand) Intn(n int) int { return r.n % n }
