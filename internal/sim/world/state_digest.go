package world

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"math"

	"arrowcraft.ai/internal/sim/ecs"
)

type hashWriter interface {
	Write(p []byte) (n int, err error)
}

// stateDigest hashes every live entity in id order. UUIDs are random per
// run and are left out so replays reproduce the digest.
func (w *World) stateDigest(nowTick uint64) string {
	h := sha256.New()
	var tmp [8]byte

	digestWriteU64(h, &tmp, nowTick)
	digestWriteU64(h, &tmp, w.reg.LastID())

	for _, e := range w.st.kind.Entities() {
		w.digestEntity(h, &tmp, e)
	}
	return hex.EncodeToString(h.Sum(nil))
}

func (w *World) digestEntity(h hashWriter, tmp *[8]byte, e ecs.Entity) {
	k, _ := w.st.kind.Get(e)
	digestWriteU64(h, tmp, uint64(e))
	h.Write([]byte{byte(k)})

	if p, ok := w.st.pos.Get(e); ok {
		digestWriteVec(h, tmp, p.X, p.Y, p.Z)
	}
	if v, ok := w.st.vel.Get(e); ok {
		digestWriteVec(h, tmp, v.X, v.Y, v.Z)
	}
	if r, ok := w.st.rot.Get(e); ok {
		digestWriteF64(h, tmp, r.Yaw)
		digestWriteF64(h, tmp, r.Pitch)
	}
	if n, ok := w.st.name.Get(e); ok {
		h.Write([]byte(n.Value))
		h.Write([]byte{0})
	}
	if inv, ok := w.st.inv.Get(e); ok && inv.Inventory != nil {
		for i, s := range inv.Slots() {
			if s.IsEmpty() {
				continue
			}
			digestWriteU64(h, tmp, uint64(i))
			h.Write([]byte(s.Kind))
			h.Write([]byte{0})
			digestWriteU64(h, tmp, uint64(s.Count))
		}
	}
	if cs, ok := w.st.charge.Get(e); ok {
		h.Write([]byte{'C'})
		digestWriteF64(h, tmp, cs.Level)
		digestWriteU64(h, tmp, cs.StartTick)
	}
	if o, ok := w.st.owner.Get(e); ok {
		digestWriteU64(h, tmp, uint64(o.Entity))
	}
	if a, ok := w.st.arrows.Get(e); ok {
		digestWriteU64(h, tmp, uint64(a.Count))
	}
	if hp, ok := w.st.health.Get(e); ok {
		digestWriteF64(h, tmp, hp.Current)
		digestWriteF64(h, tmp, hp.Max)
	}
	if f, ok := w.st.flight.Get(e); ok {
		digestWriteU64(h, tmp, f.SpawnTick)
		digestWriteU64(h, tmp, uint64(f.Age))
	}
}

func digestWriteU64(h hashWriter, tmp *[8]byte, v uint64) {
	binary.LittleEndian.PutUint64(tmp[:], v)
	h.Write(tmp[:])
}

func digestWriteF64(h hashWriter, tmp *[8]byte, v float64) {
	digestWriteU64(h, tmp, math.Float64bits(v))
}

func digestWriteVec(h hashWriter, tmp *[8]byte, x, y, z float64) {
	digestWriteF64(h, tmp, x)
	digestWriteF64(h, tmp, y)
	digestWriteF64(h, tmp, z)
}
