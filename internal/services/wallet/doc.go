/*
Package wallet owns the per-user NGN/GHS balances.

Every balance change goes through Adjust (or AdjustTx when the caller already
holds a unit of work). The wallet row is locked for the duration of the
check-and-write, so two concurrent debits of one currency never both pass the
balance check.

Usage:

	svc := wallet.NewService(store, cacheService, wallet.Config{}, metrics, logger)

	// Read, creating an empty wallet on first use
	w, err := svc.GetOrCreate(ctx, userID)

	// Credit 5000 NGN as a deposit
	w, err = svc.Adjust(ctx, userID, models.CurrencyNGN, decimal.NewFromInt(5000), models.TotalDeposits)

Reads go through the Redis cache; a cache failure falls back to the database
and is only logged. The cache entry is dropped after every committed change.
*/
package wallet
