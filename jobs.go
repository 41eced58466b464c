package mintseed

import (
	"context"
	"sync"

	"github.com/mintseed/mintseed/schema"
)

func (s *Mintseed) runJobs() {
	s.scheduler.Every(30).Seconds().SingletonMode().Do(s.reconcileUncertainOrders)
	s.scheduler.Every(1).Minute().SingletonMode().Do(s.watchIssuedCount)

	s.scheduler.StartAsync()
}

// watchIssuedCount keeps the allocator floor and the supply gauge in step
// with the chain.
func (s *Mintseed) watchIssuedCount() {
	count, err := s.ledger.IssuedCount(context.Background())
	if err != nil {
		log.Error("s.ledger.IssuedCount(ctx)", "err", err)
		return
	}
	s.allocator.Observe(count)
	metricIssuedSupply(count)
}

// reconcileUncertainOrders settles mints whose confirmation wait timed out:
// a landed tx commits the payment, a dropped tx frees it for retry.
func (s *Mintseed) reconcileUncertainOrders() {
	orders, err := s.wdb.GetOrdersByStatus(schema.MintUncertain)
	if err != nil {
		log.Error("s.wdb.GetOrdersByStatus(schema.MintUncertain)", "err", err)
		return
	}
	if len(orders) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, ord := range orders {
		ord := ord
		wg.Add(1)
		err := s.reconcilePool.Submit(func() {
			defer wg.Done()
			s.payLocker.Lock(ord.PaymentId)
			defer s.payLocker.Unlock(ord.PaymentId)

			// the state may have moved while waiting for the lock
			cur, err := s.wdb.GetOrderByPayment(ord.PaymentId)
			if err != nil || cur.Status != schema.MintUncertain {
				return
			}
			if _, err := s.reconcileOrder(context.Background(), &cur); err != nil && err != schema.ErrConfirmTimeout {
				log.Warn("reconcile uncertain mint", "err", err, "paymentId", ord.PaymentId, "sig", ord.MintSig)
			}
		})
		if err != nil {
			wg.Done()
			log.Error("s.reconcilePool.Submit", "err", err)
		}
	}
	wg.Wait()
}
