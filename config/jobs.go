package config

func (c *Config) runJobs() {
	c.scheduler.Every(1).Minute().SingletonMode().Do(c.updatePrice)
	c.scheduler.StartAsync()
}

func (c *Config) updatePrice() {
	price, err := c.wdb.GetPrice()
	if err != nil {
		log.Error("c.wdb.GetPrice()", "err", err)
		return
	}
	c.priceLocker.Lock()
	if price != c.price {
		log.Info("mint price updated", "old", c.price, "new", price)
		c.price = price
	}
	c.priceLocker.Unlock()
}
