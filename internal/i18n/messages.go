package i18n

import "bazaar/internal/domain"

type Key string

const (
	NotAuthenticated  Key = "not_authenticated"
	InsufficientStock Key = "insufficient_stock"
	InsufficientFunds Key = "insufficient_funds"
	EmptyCart         Key = "empty_cart"
	InvalidPayment    Key = "invalid_payment"
	OrderPlaced       Key = "order_placed"
	OrderFailed       Key = "order_failed"
	BadCredentials    Key = "bad_credentials"
	WrongPassword     Key = "wrong_password"
	MissingFields     Key = "missing_fields"
	ReservedEmail     Key = "reserved_email"
	EmailTaken        Key = "email_taken"
	InvalidInput      Key = "invalid_input"
	InvalidAmount     Key = "invalid_amount"
	Updated           Key = "updated"
	NotFound          Key = "not_found"
	Forbidden         Key = "forbidden"
	InvalidTransition Key = "invalid_transition"
	AlreadyRated      Key = "already_rated"
	NotRateable       Key = "not_rateable"
	StoreUnavailable  Key = "store_unavailable"
	StoreConflict     Key = "store_conflict"
	StoreMissingTable Key = "store_missing_table"
	ServerError       Key = "server_error"
	RateLimited       Key = "rate_limited"
	CSRFFailed        Key = "csrf_failed"
	InvalidImage      Key = "invalid_image"
	DescribeNoKey     Key = "describe_no_key"
	DescribeFailed    Key = "describe_failed"
	DescribeEmpty     Key = "describe_empty"
	NotifAccepted     Key = "notif_accepted"
	NotifShipped      Key = "notif_shipped"
	NotifUpdate       Key = "notif_update"
	NotifMessage      Key = "notif_message"
	AdminNewOrder     Key = "admin_new_order"
	AdminNewOrderMsg  Key = "admin_new_order_msg"
	AdminLowStock     Key = "admin_low_stock"
	AdminLowStockMsg  Key = "admin_low_stock_msg"
	Currency          Key = "currency"
	DescribePrompt    Key = "describe_prompt"
)

type entry map[domain.Locale]string

const (
	ar = domain.LocaleArabic
	en = domain.LocaleEnglish
	fr = domain.LocaleFrench
)

var catalog = map[Key]entry{
	NotAuthenticated: {ar: "يجب تسجيل الدخول", en: "You must be logged in", fr: "Vous devez être connecté"},
	InsufficientStock: {
		ar: "عذراً، الكمية المطلوبة من %s غير متوفرة حالياً",
		en: "Sorry, the requested quantity of %s is not available right now",
		fr: "Désolé, la quantité demandée de %s n'est pas disponible",
	},
	InsufficientFunds: {ar: "رصيدك في المحفظة غير كافٍ", en: "Your wallet balance is insufficient", fr: "Le solde de votre portefeuille est insuffisant"},
	EmptyCart:         {ar: "السلة فارغة", en: "Your cart is empty", fr: "Votre panier est vide"},
	InvalidPayment:    {ar: "طريقة الدفع غير صالحة", en: "Invalid payment method", fr: "Mode de paiement invalide"},
	OrderPlaced:       {ar: "تم إرسال الطلب بنجاح", en: "Order placed successfully", fr: "Commande envoyée avec succès"},
	OrderFailed:       {ar: "حدث خطأ أثناء إرسال الطلب", en: "Something went wrong while placing the order", fr: "Une erreur est survenue lors de l'envoi de la commande"},
	BadCredentials:    {ar: "خطأ في البريد الإلكتروني أو كلمة المرور", en: "Invalid email or password", fr: "E-mail ou mot de passe incorrect"},
	WrongPassword:     {ar: "كلمة المرور الحالية غير صحيحة", en: "Current password incorrect", fr: "Mot de passe incorrect"},
	MissingFields:     {ar: "يرجى ملء جميع الحقول بما في ذلك رقم الهاتف", en: "Please fill in all fields, including the phone number", fr: "Veuillez remplir tous les champs, y compris le téléphone"},
	ReservedEmail:     {ar: "هذا البريد مخصص للإدارة فقط.", en: "This email is reserved for the administrator.", fr: "Cet e-mail est réservé à l'administration."},
	EmailTaken:        {ar: "المستخدم موجود مسبقاً", en: "An account with this email already exists", fr: "Un compte existe déjà avec cet e-mail"},
	InvalidInput:      {ar: "البيانات المدخلة غير صالحة", en: "Invalid input", fr: "Données invalides"},
	InvalidAmount:     {ar: "المبلغ غير صالح", en: "Invalid amount", fr: "Montant invalide"},
	Updated:           {ar: "تم التحديث بنجاح", en: "Updated successfully", fr: "Mis à jour"},
	NotFound:          {ar: "العنصر غير موجود", en: "Not found", fr: "Introuvable"},
	Forbidden:         {ar: "غير مسموح", en: "Access denied", fr: "Accès refusé"},
	InvalidTransition: {ar: "لا يمكن تغيير حالة الطلب بهذا الشكل", en: "This order cannot move to that status", fr: "Cette commande ne peut pas passer à ce statut"},
	AlreadyRated:      {ar: "تم تقييم هذا الطلب مسبقاً", en: "This order has already been rated", fr: "Cette commande a déjà été notée"},
	NotRateable:       {ar: "لا يمكن تقييم هذا الطلب حالياً", en: "This order cannot be rated yet", fr: "Cette commande ne peut pas encore être notée"},
	StoreUnavailable:  {ar: "الخادم غير متاح حالياً، حاول لاحقاً", en: "The store is unavailable, please try again later", fr: "Le service est indisponible, réessayez plus tard"},
	StoreConflict:     {ar: "تعارض في البيانات", en: "The change conflicts with existing data", fr: "La modification entre en conflit avec les données existantes"},
	StoreMissingTable: {ar: "قاعدة البيانات غير مهيأة", en: "The database is not initialised", fr: "La base de données n'est pas initialisée"},
	ServerError:       {ar: "حدث خطأ ما، يرجى المحاولة مرة أخرى", en: "Something went wrong. Please try again.", fr: "Une erreur est survenue. Veuillez réessayer."},
	RateLimited:       {ar: "محاولات كثيرة، حاول لاحقاً", en: "Too many attempts. Please try again later.", fr: "Trop de tentatives. Réessayez plus tard."},
	CSRFFailed:        {ar: "فشل التحقق الأمني، أعد تحميل الصفحة", en: "Security check failed. Please refresh and try again.", fr: "Échec du contrôle de sécurité. Actualisez la page."},
	InvalidImage:      {ar: "الصورة غير صالحة", en: "Invalid image", fr: "Image invalide"},
	DescribeNoKey:     {ar: "وصف السلعة غير متاح حالياً (يرجى إعداد مفتاح API).", en: "Product description unavailable (please configure the API key).", fr: "Description indisponible (veuillez configurer la clé API)."},
	DescribeFailed:    {ar: "حدث خطأ أثناء إنشاء الوصف بالذكاء الاصطناعي.", en: "An error occurred while generating the description.", fr: "Une erreur est survenue lors de la génération de la description."},
	DescribeEmpty:     {ar: "تعذر إنشاء وصف تلقائي.", en: "Could not generate a description.", fr: "Impossible de générer une description."},
	NotifAccepted:     {ar: "تم قبول طلبك", en: "Order Accepted", fr: "Commande Acceptée"},
	NotifShipped:      {ar: "طلبك في الطريق", en: "Order Shipped", fr: "Commande Expédiée"},
	NotifUpdate:       {ar: "تحديث الطلب", en: "Order Update", fr: "Mise à jour"},
	NotifMessage:      {ar: "الطلب #%s الآن بحالة: %s", en: "Order #%s is now: %s", fr: "Commande #%s est: %s"},
	AdminNewOrder:     {ar: "طلب شراء جديد", en: "New purchase order", fr: "Nouvelle commande"},
	AdminNewOrderMsg: {
		ar: "لقد تلقيت طلباً من %s (الهاتف: %s) بقيمة %s د.ج",
		en: "You received an order from %s (phone: %s) worth %s DZD",
		fr: "Vous avez reçu une commande de %s (tél : %s) d'un montant de %s DZD",
	},
	AdminLowStock:    {ar: "تنبيه المخزون", en: "Low stock", fr: "Stock faible"},
	AdminLowStockMsg: {ar: "السلعة %s أوشكت على النفاذ (المتبقي: %d)", en: "%s is running low (%d left)", fr: "%s est presque épuisé (%d restant)"},
	Currency:         {ar: "د.ج", en: "DZD", fr: "DZD"},
	DescribePrompt: {
		ar: "Generate a short, professional, and persuasive product description in Arabic for a product named %q in the category %q. Keep it under 100 words.",
		en: "Generate a short, professional, and persuasive product description in English for a product named %q in the category %q. Keep it under 100 words.",
		fr: "Generate a short, professional, and persuasive product description in French for a product named %q in the category %q. Keep it under 100 words.",
	},
}
