package scylla

// Requêtes CQL. gocql prépare et met en cache chaque requête à paramètres
// au premier appel.
const (
	qSelectCounter = `SELECT value FROM counters WHERE namespace = ?`
	qInsertCounter = `INSERT INTO counters (namespace, value) VALUES (?, 1) IF NOT EXISTS`
	qUpdateCounter = `UPDATE counters SET value = ? WHERE namespace = ? IF value = ?`

	productColumns = `product_id, company_id, name, description, price, original_price, on_offer, stock, category, photo, created_at, updated_at`

	qInsertProduct       = `INSERT INTO products (` + productColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`
	qSelectProduct       = `SELECT ` + productColumns + ` FROM products WHERE product_id = ?`
	qSelectProducts      = `SELECT ` + productColumns + ` FROM products`
	qSelectProductsByCo  = `SELECT ` + productColumns + ` FROM products WHERE company_id = ?`
	qUpdateProductFields = `UPDATE products SET name = ?, description = ?, category = ?, photo = ?, updated_at = ? WHERE product_id = ? IF EXISTS`
	qSetProductStock     = `UPDATE products SET stock = ?, updated_at = ? WHERE product_id = ? IF EXISTS`
	qUpdateProductPrice  = `UPDATE products SET price = ?, updated_at = ? WHERE product_id = ? IF on_offer = false`
	qUpdateProductPromo  = `UPDATE products SET price = ?, original_price = ?, on_offer = ?, updated_at = ? WHERE product_id = ? IF EXISTS`
	qSelectProductStock  = `SELECT stock FROM products WHERE product_id = ?`
	qUpdateProductStock  = `UPDATE products SET stock = ? WHERE product_id = ? IF stock = ?`
	qDeleteProduct       = `DELETE FROM products WHERE product_id = ? IF EXISTS`

	offerColumns = `offer_id, product_id, discount, offer_price, start_date, end_date, active, created_at, updated_at`

	qInsertOffer        = `INSERT INTO offers (` + offerColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?) IF NOT EXISTS`
	qSelectOffer        = `SELECT ` + offerColumns + ` FROM offers WHERE offer_id = ?`
	qSelectOffers       = `SELECT ` + offerColumns + ` FROM offers`
	qSelectOffersByProd = `SELECT ` + offerColumns + ` FROM offers WHERE product_id = ?`
	qUpdateOffer        = `UPDATE offers SET discount = ?, offer_price = ?, start_date = ?, end_date = ?, active = ?, updated_at = ? WHERE offer_id = ? IF EXISTS`
	qDeactivateOffer    = `UPDATE offers SET active = false, updated_at = ? WHERE offer_id = ? IF active = true AND end_date = ?`
	qDeleteOffer        = `DELETE FROM offers WHERE offer_id = ? IF EXISTS`
	qClaimActiveOffer   = `INSERT INTO active_offers (product_id, offer_id) VALUES (?, ?) IF NOT EXISTS`
	qReleaseActiveOffer = `DELETE FROM active_offers WHERE product_id = ? IF offer_id = ?`

	couponColumns = `coupon_id, code, discount, expiration_date, created_at`

	qInsertCoupon      = `INSERT INTO coupons (` + couponColumns + `) VALUES (?, ?, ?, ?, ?)`
	qSelectCoupon      = `SELECT ` + couponColumns + ` FROM coupons WHERE coupon_id = ?`
	qSelectCoupons     = `SELECT ` + couponColumns + ` FROM coupons`
	qDeleteCoupon      = `DELETE FROM coupons WHERE coupon_id = ?`
	qClaimCouponCode   = `INSERT INTO coupons_by_code (code, coupon_id) VALUES (?, ?) IF NOT EXISTS`
	qSelectCouponCode  = `SELECT coupon_id FROM coupons_by_code WHERE code = ?`
	qReleaseCouponCode = `DELETE FROM coupons_by_code WHERE code = ? IF coupon_id = ?`

	receiptColumns = `receipt_id, user_id, emitted_at, detail, total_price`

	qInsertReceipt  = `INSERT INTO receipts (` + receiptColumns + `) VALUES (?, ?, ?, ?, ?) IF NOT EXISTS`
	qSelectReceipt  = `SELECT ` + receiptColumns + ` FROM receipts WHERE receipt_id = ?`
	qSelectReceipts = `SELECT ` + receiptColumns + ` FROM receipts`
	qDeleteReceipt  = `DELETE FROM receipts WHERE receipt_id = ?`

	reviewColumns = `review_id, product_id, user_id, rating, comment, created_at`

	qInsertReview        = `INSERT INTO reviews (` + reviewColumns + `) VALUES (?, ?, ?, ?, ?, ?)`
	qSelectReview        = `SELECT ` + reviewColumns + ` FROM reviews WHERE review_id = ?`
	qSelectReviews       = `SELECT ` + reviewColumns + ` FROM reviews`
	qSelectReviewsByProd = `SELECT ` + reviewColumns + ` FROM reviews WHERE product_id = ?`
	qUpdateReview        = `UPDATE reviews SET rating = ?, comment = ? WHERE review_id = ? IF EXISTS`
	qDeleteReview        = `DELETE FROM reviews WHERE review_id = ?`

	accountColumns = `kind, account_id, name, email, password_hash, company_id, phone, address, description, logo_url, provider, created_at`

	qInsertAccount      = `INSERT INTO accounts (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	qSelectAccount      = `SELECT ` + accountColumns + ` FROM accounts WHERE kind = ? AND account_id = ?`
	qSelectAccounts     = `SELECT ` + accountColumns + ` FROM accounts WHERE kind = ?`
	qDeleteAccount      = `DELETE FROM accounts WHERE kind = ? AND account_id = ?`
	qClaimAccountEmail  = `INSERT INTO accounts_by_email (kind, email, account_id) VALUES (?, ?, ?) IF NOT EXISTS`
	qSelectAccountEmail = `SELECT account_id FROM accounts_by_email WHERE kind = ? AND email = ?`
	qReleaseAccountMail = `DELETE FROM accounts_by_email WHERE kind = ? AND email = ? IF account_id = ?`

	catalogColumns = `catalog_id, name, description, product_ids, updated_at`

	qInsertCatalog  = `INSERT INTO catalogs (` + catalogColumns + `) VALUES (?, ?, ?, ?, ?)`
	qSelectCatalog  = `SELECT ` + catalogColumns + ` FROM catalogs WHERE catalog_id = ?`
	qSelectCatalogs = `SELECT ` + catalogColumns + ` FROM catalogs`
	qUpdateCatalog  = `UPDATE catalogs SET name = ?, description = ?, product_ids = ?, updated_at = ? WHERE catalog_id = ? IF EXISTS`
	qDeleteCatalog  = `DELETE FROM catalogs WHERE catalog_id = ?`
)
