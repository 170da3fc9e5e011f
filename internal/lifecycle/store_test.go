package lifecycle_test

import (
	"reflect"

	"github.com/junioryono/ioc/internal/lifecycle"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type cache struct{ hits int }

var cacheType = reflect.TypeOf((*cache)(nil))

var _ = Describe("Store", func() {
	var store *lifecycle.Store

	BeforeEach(func() {
		store = lifecycle.New()
	})

	It("starts without slots", func() {
		Expect(store.Len()).To(Equal(0))
		Expect(store.Has(cacheType)).To(BeFalse())
		Expect(store.State(cacheType)).To(Equal("none"))

		_, ok := store.TryGet(cacheType)
		Expect(ok).To(BeFalse())
	})

	Context("with a singleton slot", func() {
		BeforeEach(func() {
			store.MarkSingleton(cacheType)
		})

		It("is empty until filled", func() {
			Expect(store.Has(cacheType)).To(BeTrue())
			Expect(store.State(cacheType)).To(Equal("empty"))

			_, ok := store.TryGet(cacheType)
			Expect(ok).To(BeFalse())
		})

		It("returns the exact instance once filled", func() {
			instance := &cache{}
			Expect(store.Begin(cacheType)).To(BeTrue())
			store.Put(cacheType, reflect.ValueOf(instance))

			got, ok := store.TryGet(cacheType)
			Expect(ok).To(BeTrue())
			Expect(got.Interface()).To(BeIdenticalTo(instance))
			Expect(store.State(cacheType)).To(Equal("filled"))
		})

		It("does not expose an instance under construction", func() {
			Expect(store.Begin(cacheType)).To(BeTrue())
			Expect(store.State(cacheType)).To(Equal("building"))
			Expect(store.Begin(cacheType)).To(BeFalse())

			_, ok := store.TryGet(cacheType)
			Expect(ok).To(BeFalse())
		})

		It("resets an abandoned build to empty", func() {
			Expect(store.Begin(cacheType)).To(BeTrue())
			store.Abandon(cacheType)

			Expect(store.State(cacheType)).To(Equal("empty"))
			Expect(store.Begin(cacheType)).To(BeTrue())
		})

		It("drops the cached instance when marked again", func() {
			store.Put(cacheType, reflect.ValueOf(&cache{}))
			store.MarkSingleton(cacheType)

			_, ok := store.TryGet(cacheType)
			Expect(ok).To(BeFalse())
		})

		It("removes the slot when unmarked", func() {
			store.Put(cacheType, reflect.ValueOf(&cache{}))
			store.Unmark(cacheType)

			Expect(store.Has(cacheType)).To(BeFalse())
			Expect(store.Len()).To(Equal(0))
		})
	})

	It("ignores Put for types without a slot", func() {
		store.Put(cacheType, reflect.ValueOf(&cache{}))

		Expect(store.Has(cacheType)).To(BeFalse())
	})

	It("stores direct instances as filled slots", func() {
		instance := &cache{hits: 3}
		store.PutDirect(cacheType, reflect.ValueOf(instance))

		got, ok := store.TryGet(cacheType)
		Expect(ok).To(BeTrue())
		Expect(got.Interface()).To(BeIdenticalTo(instance))
		Expect(store.Begin(cacheType)).To(BeFalse())
	})

	It("ignores Abandon on a filled slot", func() {
		store.PutDirect(cacheType, reflect.ValueOf(&cache{}))
		store.Abandon(cacheType)

		Expect(store.State(cacheType)).To(Equal("filled"))
	})
})
